package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/strata/internal/ports/primary"
	"github.com/example/strata/internal/wire"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Track RACI workflow consultations",
}

var workflowProgressCmd = &cobra.Command{
	Use:   "progress [workflow-id]",
	Short: "Show per-assignee status for the current step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.WorkflowAdapter().Progress(cmd.Context(), args[0])
	},
}

var workflowConsultCmd = &cobra.Command{
	Use:   "consult [workflow-id] [user-id]",
	Short: "Submit an assignee's consultation record",
	Long: `Submit a consultation record for an assignee of the current step.
Informed assignees are notified only and cannot submit.

Examples:
  strata workflow consult WF-001 U-CAROL
  strata workflow consult WF-001 U-BOB --status rejected --comment "over budget"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		comment, _ := cmd.Flags().GetString("comment")

		return wire.WorkflowAdapter().Consult(cmd.Context(), primary.SubmitRecordRequest{
			WorkflowID: args[0],
			UserID:     args[1],
			Status:     status,
			Comment:    comment,
		})
	},
}

var workflowActivityCmd = &cobra.Command{
	Use:   "activity [workflow-id] [user-id]",
	Short: "Mark partial activity by an assignee",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.WorkflowAdapter().Activity(cmd.Context(), args[0], args[1])
	},
}

// WorkflowCmd returns the workflow command
func WorkflowCmd() *cobra.Command {
	workflowConsultCmd.Flags().StringP("status", "s", "approved", "Record status (approved, rejected, commented)")
	workflowConsultCmd.Flags().StringP("comment", "c", "", "Comment")

	workflowCmd.AddCommand(workflowProgressCmd)
	workflowCmd.AddCommand(workflowConsultCmd)
	workflowCmd.AddCommand(workflowActivityCmd)

	return workflowCmd
}
