// Package scope defines the closed set of API capability tags and their
// static constrainability. A scope is either global (any grant applies to
// every object) or constrainable by a named object-set dimension, in which
// case a grant may be narrowed to an explicit set of object ids.
package scope

// Scope is an OAuth2 scope string requested during token introspection.
type Scope string

const (
	SurveysRead          Scope = "sadco.surveys.read"
	HydroRead            Scope = "sadco.hydro.read"
	VosRead              Scope = "sadco.vos.read"
	DownloadRead         Scope = "sadco.download.read"
	DownloadAdmin        Scope = "sadco.download.admin"
	HydroDownload        Scope = "sadco.hydro.download"
	CurrentsDownload     Scope = "sadco.currents.download"
	WeatherDownload      Scope = "sadco.weather.download"
	WavesDownload        Scope = "sadco.waves.download"
	UTRDownload          Scope = "sadco.utr.download"
	EchoSoundingDownload Scope = "sadco.echo-sounding.download"
	VosDownload          Scope = "sadco.vos.download"
)

// ConstraintKind tags how a scope grant may be narrowed.
type ConstraintKind int

const (
	// ConstraintNone means every grant of the scope is global.
	ConstraintNone ConstraintKind = iota
	// ConstraintObjectSet means a grant may be limited to a set of object
	// ids along the scope's Dimension.
	ConstraintObjectSet
)

// constrainability is fixed at build time; per-survey-type download scopes
// can be limited to a set of survey ids, everything else is global.
var catalog = map[Scope]ConstraintKind{
	SurveysRead:          ConstraintNone,
	HydroRead:            ConstraintNone,
	VosRead:              ConstraintNone,
	DownloadRead:         ConstraintNone,
	DownloadAdmin:        ConstraintNone,
	HydroDownload:        ConstraintObjectSet,
	CurrentsDownload:     ConstraintObjectSet,
	WeatherDownload:      ConstraintObjectSet,
	WavesDownload:        ConstraintObjectSet,
	UTRDownload:          ConstraintObjectSet,
	EchoSoundingDownload: ConstraintObjectSet,
	VosDownload:          ConstraintNone,
}

// All returns every scope known to the service.
func All() []Scope {
	return []Scope{
		SurveysRead, HydroRead, VosRead, DownloadRead, DownloadAdmin,
		HydroDownload, CurrentsDownload, WeatherDownload, WavesDownload,
		UTRDownload, EchoSoundingDownload, VosDownload,
	}
}

// IsValid reports whether s is a known scope.
func IsValid(s Scope) bool {
	_, ok := catalog[s]
	return ok
}

// Constraint returns the constraint kind for a scope. Unknown scopes are
// treated as unconstrainable.
func (s Scope) Constraint() ConstraintKind {
	return catalog[s]
}

// Constrainable reports whether a grant of s may be narrowed to an object set.
func (s Scope) Constrainable() bool {
	return catalog[s] == ConstraintObjectSet
}

// Dimension names the object-set dimension a constrainable scope is narrowed
// by. Empty for unconstrainable scopes.
func (s Scope) Dimension() string {
	if s.Constrainable() {
		return "survey"
	}
	return ""
}

func (s Scope) String() string { return string(s) }
