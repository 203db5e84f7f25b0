package resolver

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/smfinstall/pkg/catalog"
	"github.com/matzehuels/smfinstall/pkg/errors"
	"github.com/matzehuels/smfinstall/pkg/prompt"
)

// exitChoice leaves the installer from the version menu.
const exitChoice = "x"

// gridColumns is the number of columns in the language menu.
const gridColumns = 3

// Messages shown by the selection menus.
const (
	msgSelectVersion  = "Please select the version of SMF you would like to use:"
	msgInvalidVersion = "Invalid version selection."
	msgWantLanguages  = "Would you like to also download additional language packs?"
	msgWantUTF8       = "Would you like to download the UTF8 language packs?"
	msgSelectLangs    = "Please enter a space separated list of the language numbers you want"
	msgSelectedLangs  = "You have selected the following languages: %s"
	msgConfirmLangs   = "Is this correct?"
	msgNoneSelected   = "(None)"
)

// selectVersion shows the numbered version menu until a valid choice or the
// exit sentinel is entered.
func (r *Resolver) selectVersion(cat *catalog.Catalog) (catalog.Version, error) {
	if len(cat.Versions) == 0 {
		return catalog.Version{}, errors.New(errors.ErrCodeNotFound, "the mirror information lists no installable versions")
	}

	for {
		r.Prompt.Println(msgSelectVersion)
		for i, v := range cat.Versions {
			r.Prompt.Printf("%d) %s\n", i+1, v.Label)
		}
		r.Prompt.Printf("%s) Exit\n", exitChoice)

		input, err := r.Prompt.ReadLine("Your selection: ")
		if err != nil {
			return catalog.Version{}, err
		}
		input = strings.TrimSpace(input)

		if n, convErr := strconv.Atoi(input); convErr == nil {
			if v, ok := cat.Version(n); ok {
				return v, nil
			}
			r.Prompt.Printf("%s\n\n", msgInvalidVersion)
			continue
		}

		if strings.EqualFold(input, exitChoice) {
			return catalog.Version{}, ErrUserExit
		}
		r.Prompt.Printf("%s\n\n", prompt.InvalidInput)
	}
}

// selectLanguages asks for language packs among the compatible set.
func (r *Resolver) selectLanguages(avail catalog.LanguageSet) ([]string, error) {
	if avail.Empty() {
		return []string{}, nil
	}

	want, err := r.Prompt.Confirm(msgWantLanguages, prompt.YesDefault)
	if err != nil {
		return nil, err
	}
	if !want {
		return []string{}, nil
	}

	variant := catalog.VariantPlain
	if !avail.Has(catalog.VariantPlain) {
		variant = catalog.VariantUTF8
	}
	if avail.Has(catalog.VariantPlain) && avail.Has(catalog.VariantUTF8) {
		utf8Packs, err := r.Prompt.Confirm(msgWantUTF8, prompt.NoDefault)
		if err != nil {
			return nil, err
		}
		if utf8Packs {
			variant = catalog.VariantUTF8
		}
	}

	langs := avail.Get(variant)
	for {
		renderGrid(r.Prompt.Writer(), langs)

		input, err := r.Prompt.Ask(msgSelectLangs, prompt.FreeText)
		if err != nil {
			return nil, err
		}

		selected := parseSelection(input, len(langs))
		names := make([]string, 0, len(selected))
		display := make([]string, 0, len(selected))
		for _, i := range selected {
			names = append(names, langs[i].Name)
			display = append(display, langs[i].DisplayName)
		}

		summary := msgNoneSelected
		if len(display) > 0 {
			summary = strings.Join(display, ", ")
		}

		r.Prompt.Println(fmt.Sprintf(msgSelectedLangs, summary))
		ok, err := r.Prompt.Confirm(msgConfirmLangs, prompt.YesDefault)
		if err != nil {
			return nil, err
		}
		if ok {
			return names, nil
		}
	}
}

// parseSelection turns space separated indices into distinct positions in
// [0, n). Non-numeric and out-of-range entries are dropped silently.
func parseSelection(input string, n int) []int {
	var out []int
	seen := make(map[int]bool)
	for _, field := range strings.Fields(input) {
		i, err := strconv.Atoi(field)
		if err != nil || i < 0 || i >= n || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	return out
}

// renderGrid prints language names in a fixed 3-column grid filled row by
// row. Each cell shows its zero-based index; cells are tab separated.
func renderGrid(w io.Writer, langs []catalog.Language) {
	numWidth := len(strconv.Itoa(len(langs)))
	colWidth := 0
	for _, l := range langs {
		colWidth = max(colWidth, utf8.RuneCountInString(l.DisplayName))
	}

	rows := (len(langs) + gridColumns - 1) / gridColumns
	for row := 0; row < rows; row++ {
		var line strings.Builder
		for col := 0; col < gridColumns; col++ {
			i := row*gridColumns + col
			if i >= len(langs) {
				continue
			}
			fmt.Fprintf(&line, "%*d: %*s", numWidth, i, colWidth, langs[i].DisplayName)
			if col != gridColumns-1 {
				line.WriteByte('\t')
			}
		}
		fmt.Fprintln(w, line.String())
	}
}
