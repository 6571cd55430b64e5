// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/LeeDigitalWorks/storageclient/pkg/logger"
	"github.com/LeeDigitalWorks/storageclient/pkg/storageapi"
	"github.com/LeeDigitalWorks/storageclient/pkg/types"
	"github.com/LeeDigitalWorks/storageclient/pkg/utils"
)

var getCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Download an object",
	Long: `Download the object stored under KEY. The content is written to stdout
unless --out or --out_dir is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

var downloadCmd = &cobra.Command{
	Use:   "download KEY TOKEN",
	Short: "Download an object with a single-use token",
	Long:  `Download KEY using a token minted by "link". No API key is needed; the token is spent.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runDownload,
}

var linkCmd = &cobra.Command{
	Use:   "link KEY",
	Short: "Print a single-use download link",
	Args:  cobra.ExactArgs(1),
	RunE:  runLink,
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List objects",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var statCmd = &cobra.Command{
	Use:   "stat KEY",
	Short: "Show what the service reports about an object",
	Args:  cobra.ExactArgs(1),
	RunE:  runStat,
}

func init() {
	rootCmd.AddCommand(getCmd, downloadCmd, linkCmd, lsCmd, statCmd)

	getCmd.Flags().String("out", "", "Write to this file instead of stdout")
	getCmd.Flags().String("out_dir", "", "Write to OUT_DIR/KEY, creating subdirectories")
	downloadCmd.Flags().String("out", "", "Write to this file instead of stdout")

	lsCmd.Flags().Int("limit", 100, "Objects per page (1-1000)")
	lsCmd.Flags().String("cursor", "", "Continue a previous listing")
	lsCmd.Flags().Bool("all", false, "Follow cursors until the listing ends")
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := newTransferClient(cmd)
	if err != nil {
		return err
	}
	key := args[0]
	file, err := client.DownloadFile(cmd.Context(), key)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if dir, _ := cmd.Flags().GetString("out_dir"); dir != "" {
		if err := utils.CheckWritableDir(dir); err != nil {
			return err
		}
		if out, err = utils.LocalPathForKey(dir, key); err != nil {
			return err
		}
	}
	return writeOutput(cmd, out, file)
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := newConfiguration(cmd, false)
	if err != nil {
		return err
	}
	file, err := storageapi.NewDefaultAPI(cfg).DownloadFile(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	return writeOutput(cmd, out, file)
}

func writeOutput(cmd *cobra.Command, path string, file *types.HTTPFile) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(file.Data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return err
	}
	logger.Info().
		Str("path", path).
		Str("size", humanize.Bytes(uint64(file.Size()))).
		Msg("downloaded")
	return nil
}

func runLink(cmd *cobra.Command, args []string) error {
	client, err := newTransferClient(cmd)
	if err != nil {
		return err
	}
	link, err := client.SignedURL(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), link)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := newTransferClient(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	cursor, _ := cmd.Flags().GetString("cursor")
	all, _ := cmd.Flags().GetBool("all")

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tSIZE\tUPLOADED\tETAG")

	if all {
		for obj, err := range client.ListAll(cmd.Context(), limit) {
			if err != nil {
				w.Flush()
				return err
			}
			printObject(w, obj)
		}
		return w.Flush()
	}

	page, err := client.ListFiles(cmd.Context(), limit, cursor)
	if err != nil {
		return err
	}
	for _, obj := range page.Objects {
		printObject(w, obj)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if page.HasMore() {
		fmt.Fprintf(cmd.OutOrStdout(), "\nMore objects: --cursor %s\n", page.Cursor)
	}
	return nil
}

func printObject(w io.Writer, obj types.R2Object) {
	uploaded := "-"
	if obj.Uploaded != nil {
		uploaded = humanize.Time(*obj.Uploaded)
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", obj.Key, humanize.Bytes(uint64(obj.Size)), uploaded, obj.ETag)
}

func runStat(cmd *cobra.Command, args []string) error {
	client, err := newTransferClient(cmd)
	if err != nil {
		return err
	}
	md, err := client.FileMetadata(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Key:          %s\n", md.Key)
	if md.Name != "" {
		fmt.Fprintf(out, "Name:         %s\n", md.Name)
	}
	if md.ContentType != "" {
		fmt.Fprintf(out, "Content-Type: %s\n", md.ContentType)
	}
	fmt.Fprintf(out, "Size:         %s (%d bytes)\n", humanize.Bytes(uint64(md.Size)), md.Size)
	if md.ETag != "" {
		fmt.Fprintf(out, "ETag:         %s\n", md.ETag)
	}
	if md.Uploaded != nil {
		fmt.Fprintf(out, "Uploaded:     %s\n", md.Uploaded.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}
