package datasource

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/burst/pkg/metafile"
)

// PickerOptions returns the select options shown by InteractivePicker.
func PickerOptions(sources []DataSource, base string) []huh.Option[int] {
	opts := make([]huh.Option[int], len(sources))
	for i, s := range sources {
		name := s.Path
		if rel, err := filepath.Rel(base, s.Path); err == nil {
			name = rel
		}
		label := fmt.Sprintf("%s  (%d inputs, %s, %s)",
			name, s.InputCount, metafile.FormatBytes(s.Size), s.ModTime.Format("2006-01-02 15:04"))
		opts[i] = huh.NewOption(label, i)
	}
	return opts
}

// InteractivePicker asks the user to choose a metafile. Without a terminal it
// falls back to the freshest source.
func InteractivePicker(base string) Picker {
	return func(sources []DataSource) (DataSource, error) {
		if len(sources) == 0 {
			return DataSource{}, ErrNoMetafile
		}
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return sources[0], nil
		}

		choice := 0
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[int]().
					Title("Several metafiles found. Which one should be shown?").
					Options(PickerOptions(sources, base)...).
					Value(&choice),
			),
		).WithTheme(huh.ThemeDracula())

		if err := form.Run(); err != nil {
			return DataSource{}, err
		}
		return sources[choice], nil
	}
}
