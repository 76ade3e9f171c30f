package ws

type Event interface{ isEvent() }

type Opened struct{}

type Received struct {
	Data string
}

// Closed is always the last event on a connection.
type Closed struct {
	Code     int
	Reason   string
	WasClean bool
}

type Errored struct {
	Err error
}

func (Opened) isEvent()   {}
func (Received) isEvent() {}
func (Closed) isEvent()   {}
func (Errored) isEvent()  {}
