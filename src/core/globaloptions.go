package core

import "fmt"

// GlobalOptions is the read-only script-visible record bound as part of
// GLOBAL in every build script's module scope.
type GlobalOptions struct {
	CStandard      string
	CxxStandard    string
	SelectedProfile string
	TargetPlatform string
}

// String implements fmt.Stringer.
func (g GlobalOptions) String() string {
	return fmt.Sprintf("<global_options c_standard=%s cxx_standard=%s profile=%s platform=%s>",
		g.CStandard, g.CxxStandard, g.SelectedProfile, g.TargetPlatform)
}
