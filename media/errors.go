// Failure taxonomy for the two-phase media operations.
//
// Information Hiding:
// - Which phase of a save or delete failed, and what cleanup happened
//
// Every error carries the provider's error (Unwrap) and always
// propagates to the caller; the gallery layer must react to each kind,
// so none of these is ever swallowed.

package media

import "fmt"

// Delete stages named by DeleteError.
const (
	DeleteStageBlob = "blob"
	DeleteStageRow  = "row"
)

// UploadError reports a blob write that failed before any metadata row
// existed. The stores are still consistent: nothing was written.
type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("media upload failed for %s: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// MetadataError reports a row insert that failed after the blob was
// uploaded. Compensated records whether the one best-effort delete of
// the orphan blob succeeded; when false, the orphan is left in place
// and only this original insert failure is surfaced.
type MetadataError struct {
	Path        string
	Compensated bool
	Err         error
}

func (e *MetadataError) Error() string {
	outcome := "orphan blob left in place"
	if e.Compensated {
		outcome = "orphan blob removed"
	}
	return fmt.Sprintf("media metadata insert failed for %s (%s): %v", e.Path, outcome, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// DeleteError reports which stage of a delete failed. Stage "blob"
// means nothing was removed; stage "row" means the blob is gone and the
// now-dangling row is left for the caller to reconcile.
type DeleteError struct {
	Path  string
	Stage string
	Err   error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("media %s delete failed for %s: %v", e.Stage, e.Path, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }
