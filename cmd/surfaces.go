package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/lensdata-cli/internal/logging"
	"github.com/KaramelBytes/lensdata-cli/internal/manifest"
	"github.com/KaramelBytes/lensdata-cli/internal/prescription"
	"github.com/KaramelBytes/lensdata-cli/internal/utils"
)

var surfacesOut string

var surfacesCmd = &cobra.Command{
	Use:   "surfaces <snapshot.json>",
	Short: "Dump per-surface prescription data from an exported snapshot",
	Long: `Read a JSON snapshot of the lens data editor (one property map per surface)
and write one CSV row per surface with the columns
Surface, Comment, Type, Radius, Thickness, Material, SemiDiameter, Conic, A4, A6, A8.
Properties the snapshot could not provide are left blank.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := args[0]
		b, err := prescription.LoadSnapshot(src)
		if err != nil {
			return err
		}
		d, err := prescription.Read(src, b)
		if err != nil {
			return err
		}
		out := surfacesOut
		if out == "" {
			base := filepath.Base(src)
			out = filepath.Join(cfg.OutputRoot, strings.TrimSuffix(base, filepath.Ext(base))+".csv")
		}
		if err := utils.EnsureDir(filepath.Dir(out)); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		if err := d.Table.WriteFile(out); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}

		m := manifest.New("surfaces", "", out)
		m.AddInput(src, d.Table.Len())
		m.AddOutput(out)
		if err := finish(m); err != nil {
			return err
		}
		if len(d.Failures) > 0 {
			props := make([]string, 0, len(d.Failures))
			for p := range d.Failures {
				props = append(props, p)
			}
			sort.Strings(props)
			for _, p := range props {
				logging.L().Info("unreadable property", zap.String("property", p), zap.Int("surfaces", d.Failures[p]))
			}
		}
		fmt.Printf("✓ Exported lens data for %d surfaces to %s\n", d.Table.Len(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(surfacesCmd)
	surfacesCmd.Flags().StringVarP(&surfacesOut, "out", "o", "", "output CSV (default <output_root>/<snapshot name>.csv)")
}
