package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/UVA-Computer-Vision-Lab/rivanna-resource/internal/scheduler"
	"github.com/spf13/cobra"
)

var expandSort bool

var expandCmd = &cobra.Command{
	Use:   "expand <nodelist>...",
	Short: "Expand compressed Slurm node lists",
	Long: `Expand compressed Slurm node-list notation into one node name per line.

Use '-' to read node lists from standard input, one or more per line.
Malformed bracket groups are dropped; a token without brackets is printed as is.`,
	Example: `  rivanna-resource expand 'udc-an38-[1,9-10]'
  sinfo -h -o %N -p gpu-a40 | rivanna-resource expand -`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var names []string
		for _, arg := range args {
			if arg == "-" {
				fromStdin, err := readNodeListTokens(cmd.InOrStdin())
				if err != nil {
					return err
				}
				for _, token := range fromStdin {
					names = append(names, scheduler.ExpandNodeList(token)...)
				}
				continue
			}
			names = append(names, scheduler.ExpandNodeList(arg)...)
		}
		if expandSort {
			scheduler.SortNodeNames(names)
		}

		out := cmd.OutOrStdout()
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return nil
	},
}

func init() {
	expandCmd.Flags().BoolVarP(&expandSort, "sort", "s", false, "Sort names naturally (udc-an38-2 before udc-an38-10)")
	rootCmd.AddCommand(expandCmd)
}

// readNodeListTokens splits r into whitespace separated node-list tokens.
func readNodeListTokens(r io.Reader) ([]string, error) {
	var tokens []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		tokens = append(tokens, strings.Fields(scanner.Text())...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read node lists: %w", err)
	}
	return tokens, nil
}
