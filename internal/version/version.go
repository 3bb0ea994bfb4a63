package version

import "fmt"

// Version of the syncpanel server, bumped on release.
type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

var AppVersion = Version{Major: 0, Minor: 3, Patch: 0}
