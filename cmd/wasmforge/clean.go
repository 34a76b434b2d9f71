// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"wasmforge-cli/internal/reconcile"

	"github.com/spf13/cobra"
)

var (
	cleanRestore bool
	cleanDiscard bool

	// cleanCmd resolves backup slots left behind by a failed build.
	cleanCmd = &cobra.Command{
		Use:   "clean",
		Short: "Resolve backup slots left by a failed build",
		Long: `Resolve backup slots left behind when a build failed.

--restore moves the backed-up managed files back into the output
directory, overwriting whatever the failed build left there.
--discard deletes the backups instead. Exactly one must be given.`,
		Args: cobra.NoArgs,
		RunE: runClean,
	}
)

func init() {
	cleanCmd.Flags().BoolVar(&cleanRestore, "restore", false, "move backed-up files back into the output directory")
	cleanCmd.Flags().BoolVar(&cleanDiscard, "discard", false, "delete the backed-up files")
	cleanCmd.MarkFlagsOneRequired("restore", "discard")
	cleanCmd.MarkFlagsMutuallyExclusive("restore", "discard")
}

func runClean(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		renderSuggestions(err)
		return err
	}
	outDir := cfg.OutputPath()

	if cleanRestore {
		restored, err := reconcile.RestoreSlots(outDir)
		if err != nil {
			return err
		}
		if len(restored) == 0 {
			fmt.Println("No backup slots to restore.")
			return nil
		}
		fmt.Printf("%s Restored %d file(s): %v\n", SuccessStyle.Render("✓"), len(restored), restored)
		return nil
	}

	discarded, err := reconcile.DiscardSlots(outDir)
	if err != nil {
		return err
	}
	if len(discarded) == 0 {
		fmt.Println("No backup slots to discard.")
		return nil
	}
	fmt.Printf("%s Discarded %d file(s): %v\n", SuccessStyle.Render("✓"), len(discarded), discarded)
	return nil
}
