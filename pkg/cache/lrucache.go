// package cache implements the on-disk mirror store for analyzed
// repositories: a Least Recently Used cache keyed by clone URL that evicts
// mirrors when free disk drops below a configured floor.
package cache

import (
	"container/list"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-git/go-git/v5"

	"golang.org/x/sys/unix"
)

// MirrorCache is an LRU "like" cache implemented with a doubly-linked-list
// and hashmap, where each element is a repository mirror cloned on disk.
//
// It differs from a typical LRU cache in its eviction policy: instead of a
// fixed capacity, it evicts least recently used mirrors whenever the free
// disk below the cache directory drops under minFreeDiskGb, until enough
// space is recovered. Mirrors belonging to pinned projects are never
// evicted.
//
// Both Get and Put return the mirror in a locked state ready for
// processing; callers must ALWAYS call Done on the returned mirror once
// processing has completed.
type MirrorCache struct {
	// lock guards operations on the cache itself (element order,
	// add/delete). Individual mirrors carry their own locks.
	lock sync.Mutex

	// minFreeDiskGb is the free-disk floor (in Gb) below which the cache
	// starts evicting.
	minFreeDiskGb uint64

	// dir is the directory holding the mirrored clones, laid out as
	// <dir>/<project>/<repo> matching the discovery tree.
	dir string

	// dll and hm implement the LRU behavior.
	dll *list.List
	hm  map[string]*list.Element

	// pinnedProjects are projects whose mirrors must never be evicted.
	pinnedProjects map[string]bool
}

// NewMirrorCache returns a MirrorCache rooted at dir with the given
// free-disk floor. The directory must already exist and currently have more
// free space than the floor.
func NewMirrorCache(dir string, minFreeGbs uint64, pinnedProjects map[string]bool) (*MirrorCache, error) {
	path := filepath.Clean(dir)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("error checking provided cache directory: %s", err.Error())
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return nil, fmt.Errorf("error fetching stats for cache directory: %s", err.Error())
	}

	freeSpace := stat.Bavail * uint64(stat.Bsize)
	minFreeBytes := minFreeGbs * 1024 * 1024 * 1024
	if freeSpace <= minFreeBytes {
		return nil, fmt.Errorf("minimum free disk space: %d exceeds actual available disk space: %d", minFreeBytes, freeSpace)
	}

	return &MirrorCache{
		minFreeDiskGb:  minFreeGbs,
		dir:            path,
		dll:            list.New(),
		hm:             make(map[string]*list.Element),
		pinnedProjects: pinnedProjects,
	}, nil
}

// Get checks the cache for the provided clone URL and returns the
// associated Mirror if present, bumping it to the front of the cache. A
// miss returns nil.
func (c *MirrorCache) Get(url string) *Mirror {
	c.lock.Lock()
	defer c.lock.Unlock()

	if element, ok := c.hm[url]; ok {
		c.dll.MoveToFront(element)
		element.Value.(*Mirror).lock.Lock()
		return element.Value.(*Mirror)
	}

	return nil
}

// Put clones a repository mirror to disk and adds it to the cache, evicting
// least recently used mirrors first if the free-disk floor would be
// crossed. If the URL is already cached it is simply moved to the front.
//
// The cache lock is released before the clone begins so other mirrors can
// be processed during a possibly lengthy network operation; the new element
// stays locked throughout, which protects it from eviction.
func (c *MirrorCache) Put(url string) (*Mirror, error) {
	c.lock.Lock()

	if element, ok := c.hm[url]; ok {
		c.dll.MoveToFront(element)
		element.Value.(*Mirror).lock.Lock()
		c.lock.Unlock()
		return element.Value.(*Mirror), nil
	}

	if err := c.tryEvict(); err != nil {
		c.lock.Unlock()
		return nil, fmt.Errorf("could not evict mirrors from cache: %s", err.Error())
	}

	project := ProjectFromURL(url)
	mirror := &Mirror{
		url:     url,
		project: project,
		path:    filepath.Join(c.dir, project, RepoNameFromURL(url)),
	}

	c.hm[url] = c.dll.PushFront(mirror)
	mirror.lock.Lock()
	c.lock.Unlock()

	if _, err := os.Stat(mirror.path); err == nil {
		// The directory already exists on disk, possibly surviving from a
		// previous run. If it opens as a git repository it can be reused
		// without re-cloning; otherwise it is removed and cloned fresh.
		if _, err := git.PlainOpen(mirror.path); err == nil {
			return mirror, nil
		}
		os.RemoveAll(mirror.path)
	}

	if err := os.MkdirAll(mirror.path, os.ModePerm); err != nil {
		mirror.lock.Unlock()
		return nil, fmt.Errorf("could not create directory in cache: %s", err.Error())
	}

	if _, err := git.PlainClone(mirror.path, false, &git.CloneOptions{
		URL:  url,
		Tags: git.NoTags,
	}); err != nil {
		mirror.lock.Unlock()
		return nil, fmt.Errorf("could not clone into cache directory: %s", err.Error())
	}

	return mirror, nil
}

// tryEvict compares available bytes under the cache directory against the
// free-disk floor and evicts least recently used mirrors until enough space
// is free, skipping pinned projects.
func (c *MirrorCache) tryEvict() error {
	var stat unix.Statfs_t
	if err := unix.Statfs(c.dir, &stat); err != nil {
		return fmt.Errorf("could not calculate disk space using statfs: %s", err.Error())
	}

	minFreeBytes := c.minFreeDiskGb * 1024 * 1024 * 1024

	for stat.Bavail*uint64(stat.Bsize) <= minFreeBytes {
		if c.dll.Back() == nil {
			break
		}

		// Walk from the least recently used end toward the front, past any
		// mirrors in pinned projects.
		node := c.dll.Back()
		for c.pinnedProjects[node.Value.(*Mirror).project] {
			node = node.Prev()
			if node == nil {
				return fmt.Errorf("disk space completely occupied by pinned projects, could not evict")
			}
		}

		mirror := node.Value.(*Mirror)
		mirror.lock.Lock()

		os.RemoveAll(mirror.path)
		delete(c.hm, mirror.url)
		c.dll.Remove(node)
		mirror.lock.Unlock()

		if err := unix.Statfs(c.dir, &stat); err != nil {
			return fmt.Errorf("could not re-calculate disk space using statfs: %s", err.Error())
		}
	}

	return nil
}
