package msvc

import "github.com/google/uuid"

// namespace seeds every project GUID this package produces. It is an
// arbitrary fixed UUID private to Catapult; what matters is that it never
// changes, since changing it would reshuffle every generated project's
// identity on the next run.
var namespace = uuid.MustParse("a16f1e60-8c2c-4f66-9b84-8b6f0b6e6b3a")

// GUIDFor deterministically derives a target's MSVC project GUID from its
// owning project and target name. Regenerating the solution for the same
// graph always reproduces the same GUIDs, so Visual Studio never treats a
// re-generated project as new.
func GUIDFor(projectName, targetName string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(projectName+":"+targetName))
}
