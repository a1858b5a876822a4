package identity

import "strings"

// GitHubLogin guesses a GitHub login for a contributor. Privacy-preserving
// addresses of the form "12345+login@users.noreply.github.com" carry the
// login after the plus sign; otherwise the display name is returned
// unchanged as the best available handle.
func GitHubLogin(name, email string) string {
	if strings.Contains(email, "@users.noreply.github.com") {
		local := strings.SplitN(email, "@", 2)[0]
		if i := strings.Index(local, "+"); i >= 0 {
			return local[i+1:]
		}
		return local
	}
	return name
}
