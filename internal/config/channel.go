package config

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DisplayChannel formats a release channel label for output. A complete
// semantic version (with or without a leading "v") is shown in canonical
// "vX.Y.Z" form; anything else, including partial versions such as "2.1",
// is returned unchanged.
func DisplayChannel(label string) string {
	v, err := semver.StrictNewVersion(strings.TrimPrefix(label, "v"))
	if err != nil {
		return label
	}
	return "v" + v.String()
}
