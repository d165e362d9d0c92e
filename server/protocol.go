package main

// Binary websocket message kinds (first byte of every binary message)
const (
	MsgFrame    byte = 0x01 // msgpack Frame
	MsgKeyframe byte = 0x02 // zstd-compressed msgpack Frame
)

// Text message types (JSON envelopes)
const (
	MsgWelcome = "welcome"
	MsgError   = "error"
	MsgLeave   = "leave"
)

// FieldUpdate carries one replicated member value
type FieldUpdate struct {
	Name  string  `msgpack:"n" json:"n"`
	Seq   uint32  `msgpack:"q" json:"q"`
	Value float64 `msgpack:"v" json:"v"`
}

// SpawnRecord introduces an object to observers
type SpawnRecord struct {
	ID     EntityID           `msgpack:"id"`
	Class  string             `msgpack:"c"`
	Fields []FieldUpdate      `msgpack:"f"`
	Static map[string]float64 `msgpack:"s,omitempty"`
}

// UpdateRecord carries the changed members of one object
type UpdateRecord struct {
	ID     EntityID      `msgpack:"id"`
	Fields []FieldUpdate `msgpack:"f"`
}

// Frame is one replication step broadcast by a sector
type Frame struct {
	Tick     uint64         `msgpack:"t"`
	Keyframe bool           `msgpack:"k,omitempty"`
	Spawns   []SpawnRecord  `msgpack:"sp,omitempty"`
	Updates  []UpdateRecord `msgpack:"up,omitempty"`
	Destroys []EntityID     `msgpack:"de,omitempty"`
}

// Empty reports whether the frame carries no records
func (f *Frame) Empty() bool {
	return len(f.Spawns) == 0 && len(f.Updates) == 0 && len(f.Destroys) == 0
}

// Envelope wraps all outgoing text messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// WelcomeMsg is sent to an observer after it joins a sector
type WelcomeMsg struct {
	SectorID string `json:"sid"`
	Name     string `json:"name"`
	Tick     uint64 `json:"tick"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// SectorInfo is used in the sector list
type SectorInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Objects   int    `json:"objects"`
	Obstacles int    `json:"obstacles"`
	Observers int    `json:"observers"`
	Tick      uint64 `json:"tick"`
}

// TokenRequest asks for an observer token
type TokenRequest struct {
	Name     string `json:"name"`
	SectorID string `json:"sid"`
	Password string `json:"password"`
}

// TokenResponse carries a signed observer token
type TokenResponse struct {
	Token string `json:"token"`
}
