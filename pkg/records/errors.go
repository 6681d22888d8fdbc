package records

import (
	"errors"
	"fmt"

	"github.com/dd0wney/fedigraph/pkg/validation"
)

// ErrMalformedRecord matches every *MalformedRecordError
var ErrMalformedRecord = errors.New("malformed record")

// Record kinds reported by MalformedRecordError
const (
	KindPost = "post"
	KindUser = "user"
)

// MalformedRecordError reports the first record of a set that failed validation.
type MalformedRecordError struct {
	Kind  string // KindPost or KindUser
	Index int    // position in the input sequence
	ID    string // record id, empty when the id itself is missing
	Cause error
}

func (e *MalformedRecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("malformed %s record %d (id %s): %v", e.Kind, e.Index, e.ID, e.Cause)
	}
	return fmt.Sprintf("malformed %s record %d: %v", e.Kind, e.Index, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *MalformedRecordError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrMalformedRecord.
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// ValidatePosts checks every post and returns the first failure.
func ValidatePosts(posts []Post) error {
	for i := range posts {
		if err := validation.Struct(&posts[i]); err != nil {
			return &MalformedRecordError{Kind: KindPost, Index: i, ID: posts[i].ID, Cause: err}
		}
	}
	return nil
}

// ValidateUsers checks every user and returns the first failure.
func ValidateUsers(users []User) error {
	for i := range users {
		if err := validation.Struct(&users[i]); err != nil {
			return &MalformedRecordError{Kind: KindUser, Index: i, ID: users[i].ID, Cause: err}
		}
	}
	return nil
}
