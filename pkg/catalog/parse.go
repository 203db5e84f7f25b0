package catalog

import (
	"regexp"
	"strings"
)

var (
	mirrorPattern   = regexp.MustCompile(`<mirror name="([^"]+)">([^<]+)</mirror>`)
	installPattern  = regexp.MustCompile(`<install access="([^"]+)" name="([^"]+)">([^<]+)</install>`)
	languagePattern = regexp.MustCompile(`<language name="([^"]+)" versions="([^"]+)">([^<]+)</language>`)
)

// Parse extracts mirrors, versions, and language packs from the raw metadata
// document. It never fails: sections that do not match simply produce empty
// collections, and unrecognized elements are ignored.
//
// Language packs are cross-checked against the parsed versions. A pack keeps
// only the compatible versions that were actually offered, and packs left
// with none are dropped.
func Parse(raw string) *Catalog {
	c := &Catalog{
		Mirrors:  parseMirrors(raw),
		Versions: parseVersions(raw),
	}
	c.Languages = parseLanguages(raw, versionTags(c.Versions))
	return c
}

func parseMirrors(raw string) []Mirror {
	var mirrors []Mirror
	seen := make(map[string]int)

	for _, m := range mirrorPattern.FindAllStringSubmatch(raw, -1) {
		mirror := Mirror{Name: m[1], URL: strings.TrimSpace(m[2])}
		// Mirrors are keyed by URL; a repeated URL renames the earlier entry.
		if i, ok := seen[mirror.URL]; ok {
			mirrors[i].Name = mirror.Name
			continue
		}
		seen[mirror.URL] = len(mirrors)
		mirrors = append(mirrors, mirror)
	}
	return mirrors
}

func parseVersions(raw string) []Version {
	var versions []Version
	seen := make(map[string]int)

	for _, m := range installPattern.FindAllStringSubmatch(raw, -1) {
		v := Version{ID: strings.TrimSpace(m[3]), Label: m[2]}
		if i, ok := seen[v.ID]; ok {
			versions[i].Label = v.Label
			continue
		}
		seen[v.ID] = len(versions)
		versions = append(versions, v)
	}
	return versions
}

func versionTags(versions []Version) map[string]bool {
	tags := make(map[string]bool, len(versions))
	for _, v := range versions {
		tags[v.Tag()] = true
	}
	return tags
}

func parseLanguages(raw string, tags map[string]bool) LanguageSet {
	var set LanguageSet
	seen := map[Variant]map[string]int{
		VariantPlain: {},
		VariantUTF8:  {},
	}

	for _, m := range languagePattern.FindAllStringSubmatch(raw, -1) {
		var compatible []string
		for _, ver := range strings.Split(m[2], ",") {
			ver = strings.TrimSpace(ver)
			if ver != "" && tags[ver] {
				compatible = append(compatible, ver)
			}
		}
		if len(compatible) == 0 {
			continue
		}

		name := strings.TrimSpace(m[3])
		variant := VariantPlain
		if strings.HasSuffix(name, utf8Marker) {
			variant = VariantUTF8
		}

		lang := Language{
			Name:        name,
			DisplayName: strings.ReplaceAll(m[1], utf8Marker, ""),
			Versions:    compatible,
		}

		list := set.list(variant)
		if i, ok := seen[variant][name]; ok {
			(*list)[i] = lang
			continue
		}
		seen[variant][name] = len(*list)
		*list = append(*list, lang)
	}
	return set
}

func (s *LanguageSet) list(v Variant) *[]Language {
	if v == VariantUTF8 {
		return &s.UTF8
	}
	return &s.Plain
}
