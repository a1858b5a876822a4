// package validator provides the necessary utilities
// to validate analyze requests before any cloning happens
package validator

import (
	"regexp"
)

// MaxWindowDays bounds the analysis window a request may ask for.
const MaxWindowDays = 365

var (
	githubRegex = regexp.MustCompile(`^https://github.com/[\w-]+/[\w-]+$`)
)

// Validator: type which contains a map of validation errors (error name : string -> error_description : string)
type Validator struct {
	Errors map[string]string
}

// New: return an instance of a validator
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid: returns true if there are no errors, otherwise false
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError: add a new error to the validator
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// CheckConstraint: Receives a constraint that evaluates to a boolean expression to validate
// false -> add error
// true -> skip
func (v *Validator) CheckConstraint(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// ValidateAnalyzeRequest checks the repository URL and window of an
// on-demand analyze request.
func ValidateAnalyzeRequest(validator *Validator, url string, days int) {
	validator.CheckConstraint(url != "", "url", "URL must be provided")
	validator.CheckConstraint(MatchesGithubURL(url), "url", "The URL provided is not a valid repository")
	validator.CheckConstraint(days > 0, "days", "days must be positive")
	validator.CheckConstraint(days <= MaxWindowDays, "days", "days must not exceed a year")
}

func MatchesGithubURL(url string) bool {
	return githubRegex.MatchString(url)
}
