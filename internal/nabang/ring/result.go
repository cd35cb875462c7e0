package ring

// ReadResult is the outcome of a single PageReader.ReadOnce call.
type ReadResult int

const (
	// Readed means a unit was decoded and delivered to the caller's callback.
	Readed ReadResult = iota
	// Unreaded means there is nothing new to read right now; the caller
	// should poll again later.
	Unreaded
	// ExitProgram means the writer closed its last page in an orderly
	// shutdown (ActivityExited). Sticky: once returned, every subsequent
	// ReadOnce on this PageReader returns ExitProgram again.
	ExitProgram
	// LogNotFound means the backing file does not exist or could not be
	// mapped. Returned by the Reader façade, not by PageReader itself.
	LogNotFound
)

func (r ReadResult) String() string {
	switch r {
	case Readed:
		return "Readed"
	case Unreaded:
		return "Unreaded"
	case ExitProgram:
		return "ExitProgram"
	case LogNotFound:
		return "LogNotFound"
	default:
		return "ReadResult(unknown)"
	}
}
