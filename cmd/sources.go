package cmd

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/audiolibrelab/shaq/internal/audio"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List available capture sources",
	Long: `List the audio sources the capture backend can record from. Any of them can
be passed to --device or set as capture.device in the configuration.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := cfg.Capture.Backend
		if cmd.Flags().Changed("backend") {
			name, _ = cmd.Flags().GetString("backend")
		}

		backend, err := audio.NewBackend(name)
		if err != nil {
			return err
		}
		if err := audio.RequireBinary(backend.Binary()); err != nil {
			return err
		}

		return listAvailableSources(cmd.OutOrStdout(), backend)
	},
}

// listAvailableSources prints the sources reported by backend
func listAvailableSources(w io.Writer, backend audio.AudioBackend) error {
	sources, err := backend.ListSources()
	if err != nil {
		return fmt.Errorf("failed to get %s sources: %w", backend.GetType(), err)
	}

	fmt.Fprintf(w, "🎵 Audio Sources (%s, %s)\n", backend.GetType(), runtime.GOOS)
	fmt.Fprintf(w, "═══════════════════════════════════════\n\n")

	var available []string
	for _, b := range audio.GetAvailableBackends() {
		available = append(available, string(b))
	}
	fmt.Fprintf(w, "🔧 Installed backends: %s\n\n", strings.Join(available, ", "))

	fmt.Fprintf(w, "📋 SOURCES (%d found):\n", len(sources))
	for i, source := range sources {
		fmt.Fprintf(w, "  %d. %s\n", i+1, source)
	}

	fmt.Fprintf(w, "\n💡 Usage:\n")
	fmt.Fprintf(w, "  • shaq --listen --device \"<source>\"\n")
	fmt.Fprintf(w, "  • or set capture.device in the configuration profile\n\n")

	return nil
}

func init() {
	sourcesCmd.Flags().String("backend", "", "capture backend to query: pipewire, ffmpeg or auto")
}
