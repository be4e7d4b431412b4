package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axiomkit/axiom/internal/protocol"
)

// VersionInfo holds the version output for JSON mode.
type VersionInfo struct {
	Engine   string `json:"engine"`
	Protocol string `json:"protocol"`
	Envelope string `json:"envelope"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print engine and protocol versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format: rootOpts.Format,
				Writer: cmd.OutOrStdout(),
			}

			info := VersionInfo{
				Engine:   protocol.EngineVersion,
				Protocol: protocol.ProtocolVersion,
				Envelope: protocol.EnvelopeVersion,
			}

			if rootOpts.Format == "json" {
				return formatter.Success(info)
			}
			return formatter.Success(fmt.Sprintf(
				"axiom %s (protocol %s, envelope %s)",
				info.Engine, info.Protocol, info.Envelope))
		},
	}
}
