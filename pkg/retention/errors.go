package retention

import (
	"errors"
	"fmt"
)

// Kind classifies a failed cleanup run.
type Kind int

const (
	// KindDirectoryUnreadable means the directory could not be listed.
	KindDirectoryUnreadable Kind = iota + 1
	// KindMetadataUnavailable means an entry's modification time could not be read.
	KindMetadataUnavailable
	// KindDeleteFailed means an expired entry could not be removed.
	KindDeleteFailed
)

// String returns the metric label for k.
func (k Kind) String() string {
	switch k {
	case KindDirectoryUnreadable:
		return "directory_unreadable"
	case KindMetadataUnavailable:
		return "metadata_unavailable"
	case KindDeleteFailed:
		return "delete_failed"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against a *CleanupError.
var (
	ErrDirectoryUnreadable = errors.New("directory unreadable")
	ErrMetadataUnavailable = errors.New("metadata unavailable")
	ErrDeleteFailed        = errors.New("delete failed")
)

// CleanupError is the failure outcome of one cleanup run. The run stops at the
// first failure; entries after Path were not examined.
type CleanupError struct {
	Kind Kind

	// Dir is the directory being cleaned.
	Dir string

	// Path is the offending entry. Empty for KindDirectoryUnreadable.
	Path string

	// Err is the underlying filesystem error.
	Err error
}

func (e *CleanupError) Error() string {
	switch e.Kind {
	case KindDirectoryUnreadable:
		return fmt.Sprintf("reading directory %q failed, cleanup aborted: %v", e.Dir, e.Err)
	case KindMetadataUnavailable:
		return fmt.Sprintf("reading modified time of %q failed, cleanup aborted: %v", e.Path, e.Err)
	case KindDeleteFailed:
		return fmt.Sprintf("delete file failed, path: %q, error: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("cleanup of %q failed: %v", e.Dir, e.Err)
	}
}

// Unwrap exposes both the kind sentinel and the filesystem error, so
// errors.Is(err, ErrDeleteFailed) and errors.Is(err, fs.ErrPermission) both work.
func (e *CleanupError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *CleanupError) sentinel() error {
	switch e.Kind {
	case KindDirectoryUnreadable:
		return ErrDirectoryUnreadable
	case KindMetadataUnavailable:
		return ErrMetadataUnavailable
	case KindDeleteFailed:
		return ErrDeleteFailed
	default:
		return nil
	}
}

// KindOf returns the Kind of a *CleanupError in err's chain, or 0.
func KindOf(err error) Kind {
	var ce *CleanupError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}
