package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List loaded sessions",
	Long: `List the sessions from the data file with their metadata.
Shows session ids, titles, tracks, and optionally speakers.

Examples:
  confgen list                    # List sessions in table format
  confgen list -f json            # Output as JSON
  confgen list --format yaml      # Output as YAML
  confgen list -s                 # Include speaker names`,
	RunE: runList,
}

var (
	listFormat       string
	listWithSpeakers bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().VarP(newEnumValue(&listFormat, "table", "table", "json", "yaml"),
		"format", "f", "Output format (table, json, yaml)")
	listCmd.Flags().BoolVarP(&listWithSpeakers, "with-speakers", "s", false, "Include speaker names")
}

// listEntry is the serializable view of one session for list output.
type listEntry struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Track    string   `json:"track,omitempty" yaml:"track,omitempty"`
	Type     string   `json:"type,omitempty" yaml:"type,omitempty"`
	Speakers []string `json:"speakers,omitempty" yaml:"speakers,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	rt, err := setupRuntime(cmd.Context())
	if err != nil {
		return err
	}

	entries := make([]listEntry, 0, rt.sessions.Count())
	for _, session := range rt.sessions.All() {
		entry := listEntry{
			ID:    session.ID,
			Title: session.Title,
			Track: session.TrackName(),
			Type:  session.SessionType.String(),
		}
		if listWithSpeakers {
			entry.Speakers = session.SpeakerNames
		}
		entries = append(entries, entry)
	}

	switch listFormat {
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling sessions: %w", err)
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("marshaling sessions: %w", err)
		}
		fmt.Print(string(data))
	case "table":
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tTRACK\tTYPE")
		for _, entry := range entries {
			title := entry.Title
			if listWithSpeakers && len(entry.Speakers) > 0 {
				title += " (" + strings.Join(entry.Speakers, ", ") + ")"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", entry.ID, title, entry.Track, entry.Type)
		}
		w.Flush()
		if tracks := rt.sessions.Tracks(); len(tracks) > 0 {
			fmt.Printf("\n%d sessions across tracks: %s\n", len(entries), strings.Join(tracks, ", "))
		}
	default:
		return fmt.Errorf("unknown format %q (expected table, json, or yaml)", listFormat)
	}

	return nil
}
