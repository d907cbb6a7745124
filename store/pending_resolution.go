package store

// PendingResolution is a resolved text waiting for the caller's timezone.
// Payload is the encoded spans and resolutions.
type PendingResolution struct {
	ID          string
	Text        string
	ReferenceTs int64
	Payload     []byte
	CreatedTs   int64
}

type FindPendingResolution struct {
	ID    *string
	Limit *int
}

type DeletePendingResolution struct {
	ID *string
	// CreatedTsBefore deletes every row created before the given unix time.
	CreatedTsBefore *int64
}
