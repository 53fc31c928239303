package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mutsweep/internal/mutant"
)

// SubjectInfo describes one catalog entry.
type SubjectInfo struct {
	Name    string       `json:"name"`
	Defects []DefectInfo `json:"defects"`
}

// DefectInfo describes one declared defect.
type DefectInfo struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
}

// SubjectList is the result payload of the subjects command.
type SubjectList []SubjectInfo

func (l SubjectList) String() string {
	var b strings.Builder
	for i, s := range l {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (%d defects)", s.Name, len(s.Defects))
		for _, d := range s.Defects {
			fmt.Fprintf(&b, "\n  %-28s %s", d.ID, d.Description)
		}
	}
	return b.String()
}

// NewSubjectsCommand creates the subjects command.
func NewSubjectsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "subjects [name...]",
		Short: "List subjects and their declared defects",
		Long: `List the subjects available for sweeping, each with the defects it
declares. Loading a subject validates its declarations, so a subject with a
broken registry fails here before any sweep starts.

Examples:
  mutsweep subjects
  mutsweep subjects avltree --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubjects(rootOpts, cmd, args)
		},
	}
}

func runSubjects(opts *RootOptions, cmd *cobra.Command, names []string) error {
	catalog := opts.catalog()
	if len(names) == 0 {
		names = catalog.Names()
	}

	list := make(SubjectList, 0, len(names))
	for _, name := range names {
		s, err := catalog.Load(name)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load subject", err)
		}
		list = append(list, SubjectInfo{Name: s.Name(), Defects: defectInfo(s.Registry().Defects())})
	}
	return opts.formatter(cmd).Success(list)
}

func defectInfo(defects []mutant.Defect) []DefectInfo {
	out := make([]DefectInfo, len(defects))
	for i, d := range defects {
		out[i] = DefectInfo{ID: string(d.ID), Description: d.Description}
	}
	return out
}
