package fetch

import "fmt"

// Source tells where a fetched resource came from.
type Source int

const (
	SourceDisk Source = iota
	SourceBlob
	SourceNetwork
	SourceLocal
)

func (s Source) String() string {
	switch s {
	case SourceDisk:
		return "disk"
	case SourceBlob:
		return "blob"
	case SourceNetwork:
		return "network"
	case SourceLocal:
		return "local"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}
