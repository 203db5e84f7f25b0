// Package catalog models the remote install metadata: where packages can be
// downloaded from, which versions exist, and which language packs fit which
// versions.
//
// A [Catalog] is built once per run by [Parse] (or loaded from the decision
// cache) and is not modified afterwards. All collections keep document order
// and marshal to JSON so a catalog round-trips through the cache unchanged.
package catalog

import (
	"slices"
	"strings"
)

// labelPrefix is the product prefix carried by version labels. Language
// packs list compatible versions without it ("SMF 2.0" → "2.0").
const labelPrefix = "SMF "

// utf8Marker identifies UTF-8 language packs by their internal name.
const utf8Marker = "-utf8"

// Catalog is the structured form of the remote metadata document.
type Catalog struct {
	Mirrors   []Mirror    `json:"mirrors"`
	Versions  []Version   `json:"versions"`
	Languages LanguageSet `json:"languages"`
}

// Mirror is a download location serving identical package archives.
type Mirror struct {
	Name string `json:"name"` // Display name
	URL  string `json:"url"`  // Base URL; package file names are appended verbatim
}

// Version is an installable release.
type Version struct {
	ID    string `json:"id"`    // Package file prefix, e.g. "2.0.1"
	Label string `json:"label"` // Human label, e.g. "SMF 2.0.1"
}

// Tag returns the numeric tag language packs use to declare compatibility.
func (v Version) Tag() string {
	return strings.ReplaceAll(v.Label, labelPrefix, "")
}

// Language is an installable language pack.
type Language struct {
	Name        string   `json:"name"`         // Internal name, used as the package suffix
	DisplayName string   `json:"display_name"` // Name shown to the operator
	Versions    []string `json:"versions"`     // Compatible version tags
}

// SupportsVersion reports whether the pack lists tag as compatible.
func (l Language) SupportsVersion(tag string) bool {
	return slices.Contains(l.Versions, tag)
}

// Variant selects between the two families of language packs.
type Variant int

const (
	VariantPlain Variant = iota
	VariantUTF8
)

// String returns the variant name.
func (v Variant) String() string {
	if v == VariantUTF8 {
		return "utf8"
	}
	return "plain"
}

// LanguageSet holds language packs split by variant.
type LanguageSet struct {
	Plain []Language `json:"plain"`
	UTF8  []Language `json:"utf8"`
}

// Get returns the packs of the given variant.
func (s LanguageSet) Get(v Variant) []Language {
	if v == VariantUTF8 {
		return s.UTF8
	}
	return s.Plain
}

// Has reports whether at least one pack of the given variant exists.
func (s LanguageSet) Has(v Variant) bool {
	return len(s.Get(v)) > 0
}

// Empty reports whether the set contains no packs at all.
func (s LanguageSet) Empty() bool {
	return len(s.Plain) == 0 && len(s.UTF8) == 0
}

// ForVersion returns the packs compatible with the version tag.
// Filtering is idempotent: applying it twice yields the same set.
func (s LanguageSet) ForVersion(tag string) LanguageSet {
	return LanguageSet{
		Plain: filterLanguages(s.Plain, tag),
		UTF8:  filterLanguages(s.UTF8, tag),
	}
}

func filterLanguages(langs []Language, tag string) []Language {
	var out []Language
	for _, l := range langs {
		if l.SupportsVersion(tag) {
			out = append(out, l)
		}
	}
	return out
}

// Lookup finds a pack by internal name in the given variant.
func (s LanguageSet) Lookup(v Variant, name string) (Language, bool) {
	for _, l := range s.Get(v) {
		if l.Name == name {
			return l, true
		}
	}
	return Language{}, false
}

// Version returns the n-th version using 1-based numbering, as shown in the
// selection menu.
func (c *Catalog) Version(n int) (Version, bool) {
	if n < 1 || n > len(c.Versions) {
		return Version{}, false
	}
	return c.Versions[n-1], true
}
