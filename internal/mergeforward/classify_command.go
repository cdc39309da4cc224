package mergeforward

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	classifyCommandUseConstant              = "classify <branch>..."
	classifyCommandShortDescriptionConstant = "Print the kind of each branch"
	classifyCommandLongDescriptionConstant  = "classify reports whether each branch is master, a release branch, or a feature branch."
	classificationOutputTemplateConstant    = "%s\t%s\n"
)

// ClassifyCommandBuilder assembles the classify command.
type ClassifyCommandBuilder struct{}

// Build constructs the classify command.
func (builder *ClassifyCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   classifyCommandUseConstant,
		Short: classifyCommandShortDescriptionConstant,
		Long:  classifyCommandLongDescriptionConstant,
		Args:  cobra.MinimumNArgs(1),
		RunE:  builder.run,
	}, nil
}

func (builder *ClassifyCommandBuilder) run(command *cobra.Command, arguments []string) error {
	for _, branchName := range arguments {
		fmt.Fprintf(command.OutOrStdout(), classificationOutputTemplateConstant, branchName, ClassifyBranch(branchName))
	}
	return nil
}
