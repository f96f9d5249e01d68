package types

import "fmt"

// Split names one of the dataset partitions.
type Split string

const (
	SplitTrain Split = "train"
	SplitValid Split = "valid"
	SplitTest  Split = "test"
)

// AllSplits lists the partitions in the order they are written.
var AllSplits = []Split{SplitTrain, SplitValid, SplitTest}

// ParseSplit converts a string into a Split.
func ParseSplit(s string) (Split, error) {
	switch Split(s) {
	case SplitTrain, SplitValid, SplitTest:
		return Split(s), nil
	default:
		return "", fmt.Errorf("unknown split %q", s)
	}
}
