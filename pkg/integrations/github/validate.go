package github

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// Repository identifies the repository holding a file.
type Repository struct {
	Owner string
	Name  string
}

func (r Repository) String() string { return r.Owner + "/" + r.Name }

// ParseRepository parses and validates an "owner/repo" string.
func ParseRepository(ref string) (Repository, error) {
	owner, name, ok := strings.Cut(ref, "/")
	if !ok {
		return Repository{}, errors.New("invalid repo format: use owner/repo")
	}
	if !validOwner.MatchString(owner) {
		return Repository{}, errors.New("invalid owner format: must be 1-39 alphanumeric characters or hyphens, cannot start with hyphen")
	}
	if !validRepo.MatchString(name) {
		return Repository{}, errors.New("invalid repo format: must be 1-100 alphanumeric characters, hyphens, underscores, or dots")
	}
	return Repository{Owner: owner, Name: name}, nil
}
