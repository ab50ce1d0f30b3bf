package archive

// Event is a progress notification from Pack. The concrete types are
// WorkStart, FileDone, WorkFinished and Error.
type Event interface {
	isEvent()
}

// WorkStart announces how many members will be written.
type WorkStart struct {
	Count uint32
}

// FileDone reports that one member was written.
type FileDone struct {
	Path        string
	FinishCount uint32
}

// WorkFinished ends a successful pack.
type WorkFinished struct {
	Archives []PackedArchive
}

// Error ends a failed pack.
type Error struct {
	Message string
}

func (WorkStart) isEvent()    {}
func (FileDone) isEvent()     {}
func (WorkFinished) isEvent() {}
func (Error) isEvent()        {}
