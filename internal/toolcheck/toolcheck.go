// Package toolcheck decides whether the software behind each requested
// pipeline step can be invoked.
//
// Software is looked up, in order, in the bundled tools directory (directly
// and in a folder named after the software), on the search path, and then in
// the user-supplied tools directory (directly and in a folder named after the
// software). Lookups only read the filesystem; nothing is cached between
// calls.
package toolcheck

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sys/unix"

	"github.com/me/mitopipeline/pkg/pipeline"
)

// Location is where an executable was found.
type Location string

const (
	LocationBundled Location = "bundled"
	LocationUser    Location = "user"
	LocationPath    Location = "path"
)

func (l Location) String() string {
	return string(l)
}

// Resolution is the outcome of locating one piece of software.
type Resolution struct {
	Location Location
	Path     string // absolute or search-path-relative executable path
}

// Availability maps each required software to where it was found.
type Availability map[pipeline.Software]Resolution

// Software returns the resolved software names in sorted order.
func (a Availability) Software() []pipeline.Software {
	out := make([]pipeline.Software, 0, len(a))
	for sw := range a {
		out = append(out, sw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Failure paths reported on a ToolNotFound error.
const (
	FailureUserTools   = "user-tools"
	FailureCommandLine = "command-line"
)

// Resolver locates executables for pipeline steps.
type Resolver struct {
	BundledDir string // tools shipped with mitopipeline
	UserDir    string // tools directory given by the user; may be empty
	SearchPath string // PATH-style list of directories

	logger *slog.Logger
}

// NewResolver creates a Resolver that searches the process PATH.
func NewResolver(bundledDir, userDir string, logger *slog.Logger) *Resolver {
	return &Resolver{
		BundledDir: bundledDir,
		UserDir:    userDir,
		SearchPath: os.Getenv("PATH"),
		logger:     logger.With("component", "toolcheck"),
	}
}

// RequiredSoftware returns the distinct software needed by requested, sorted.
// Steps without a dependency entry need nothing.
func RequiredSoftware(requested []pipeline.Step, deps pipeline.Dependencies) []pipeline.Software {
	seen := make(map[pipeline.Software]bool)
	var out []pipeline.Software
	for _, step := range requested {
		sw, ok := deps[step]
		if !ok || sw == "" || seen[sw] {
			continue
		}
		seen[sw] = true
		out = append(out, sw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Resolve locates every software required by requested. It fails with a
// ToolNotFound SetupError on the first software that cannot be found.
func (r *Resolver) Resolve(requested []pipeline.Step, deps pipeline.Dependencies) (Availability, error) {
	required := RequiredSoftware(requested, deps)
	avail := make(Availability, len(required))
	for _, sw := range required {
		res, ok := r.Locate(sw)
		if !ok {
			return nil, r.notFound(sw)
		}
		r.logger.Debug("tool resolved", "software", sw, "location", res.Location, "path", res.Path)
		avail[sw] = res
	}
	return avail, nil
}

// Locate finds a single software.
func (r *Resolver) Locate(sw pipeline.Software) (Resolution, bool) {
	name := string(sw)

	// Bundled tools or the search path.
	inBundled, found := r.inDir(r.BundledDir, name, LocationBundled)
	if !found {
		if p, ok := r.lookPath(name); ok {
			inBundled, found = Resolution{Location: LocationPath, Path: p}, true
		}
	}
	if found {
		return inBundled, true
	}

	if r.UserDir != "" {
		if res, ok := r.inDir(r.UserDir, name, LocationUser); ok {
			return res, true
		}
	}
	return Resolution{}, false
}

// inDir checks dir/name and dir/name/name.
func (r *Resolver) inDir(dir, name string, loc Location) (Resolution, bool) {
	if dir == "" {
		return Resolution{}, false
	}
	for _, candidate := range []string{
		filepath.Join(dir, name),
		filepath.Join(dir, name, name),
	} {
		if Executable(candidate) {
			return Resolution{Location: loc, Path: candidate}, true
		}
	}
	return Resolution{}, false
}

func (r *Resolver) lookPath(name string) (string, bool) {
	for _, dir := range filepath.SplitList(r.SearchPath) {
		// An empty entry means the working directory; it is not searched.
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if Executable(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func (r *Resolver) notFound(sw pipeline.Software) error {
	if r.UserDir != "" {
		return &pipeline.SetupError{
			Code: pipeline.ErrToolNotFound,
			Message: fmt.Sprintf("user-specified tools directory '%s' has no executable or folder called %s "+
				"and %s is not available to run from the command line; install it or provide its executable "+
				"in the tools directory", r.UserDir, sw, sw),
			Path:     r.UserDir,
			Software: sw,
			Detail:   FailureUserTools,
		}
	}
	return &pipeline.SetupError{
		Code: pipeline.ErrToolNotFound,
		Message: fmt.Sprintf("%s is not available to run on the command line; install it or provide "+
			"a tools directory that contains its executable", sw),
		Software: sw,
		Detail:   FailureCommandLine,
	}
}

// Executable reports whether path is a regular file the current process
// may execute.
func Executable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}
