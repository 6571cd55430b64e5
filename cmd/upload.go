// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/LeeDigitalWorks/storageclient/pkg/storageapi"
	"github.com/LeeDigitalWorks/storageclient/pkg/types"
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Upload a file",
	Long: `Upload FILE, or stdin when FILE is "-". Files larger than --part_size are
sent as a multipart upload with --concurrency parts in flight.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

var multipartCmd = &cobra.Command{
	Use:   "multipart",
	Short: "Drive a multipart upload step by step",
}

var multipartStartCmd = &cobra.Command{
	Use:   "start KEY",
	Short: "Start a multipart upload and print its upload id",
	Args:  cobra.ExactArgs(1),
	RunE:  runMultipartStart,
}

var multipartPartCmd = &cobra.Command{
	Use:   "part KEY UPLOAD_ID PART_NUMBER FILE",
	Short: "Upload one part and print its etag",
	Args:  cobra.ExactArgs(4),
	RunE:  runMultipartPart,
}

var multipartCompleteCmd = &cobra.Command{
	Use:   "complete KEY UPLOAD_ID PART:ETAG...",
	Short: "Complete a multipart upload from its parts",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runMultipartComplete,
}

func init() {
	rootCmd.AddCommand(uploadCmd, multipartCmd)
	multipartCmd.AddCommand(multipartStartCmd, multipartPartCmd, multipartCompleteCmd)

	uploadCmd.Flags().String("key", "", "Key to store under (default: the file name)")
	uploadCmd.Flags().String("content_type", "", "Content type (default: guessed from the extension)")
	addTransferFlags(uploadCmd)

	for _, c := range []*cobra.Command{uploadCmd, multipartStartCmd, multipartPartCmd, multipartCompleteCmd} {
		c.Flags().String("visibility", "", "INTERNAL, PRIVATE or PUBLIC")
	}
}

func visibilityFlag(cmd *cobra.Command) (types.Visibility, error) {
	s, _ := cmd.Flags().GetString("visibility")
	if s == "" {
		return "", nil
	}
	return types.ParseVisibility(s)
}

func visibilityPtr(v types.Visibility) *types.Visibility {
	if v == "" {
		return nil
	}
	return &v
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return storageapi.MediaTypeOctetStream
}

func runUpload(cmd *cobra.Command, args []string) error {
	vis, err := visibilityFlag(cmd)
	if err != nil {
		return err
	}
	client, err := newTransferClient(cmd)
	if err != nil {
		return err
	}

	path := args[0]
	key, _ := cmd.Flags().GetString("key")
	contentType, _ := cmd.Flags().GetString("content_type")

	in := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
		if key == "" {
			key = filepath.Base(path)
		}
		if contentType == "" {
			contentType = contentTypeFor(path)
		}
	}
	if key == "" {
		return fmt.Errorf("--key is required when reading stdin")
	}
	if contentType == "" {
		contentType = storageapi.MediaTypeOctetStream
	}

	res, err := client.UploadFile(cmd.Context(), in, key, vis, contentType)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Uploaded %s (%s)\n", res.Key, humanize.Bytes(uint64(res.Size)))
	if res.UploadID != "" {
		fmt.Fprintf(out, "  Parts:     %d\n", res.Parts)
		fmt.Fprintf(out, "  Upload ID: %s\n", res.UploadID)
	}
	if res.ETag != "" {
		fmt.Fprintf(out, "  ETag:      %s\n", res.ETag)
	}
	return nil
}

func runMultipartStart(cmd *cobra.Command, args []string) error {
	vis, err := visibilityFlag(cmd)
	if err != nil {
		return err
	}
	api, err := newAPI(cmd)
	if err != nil {
		return err
	}
	res, err := api.FilesPost(cmd.Context(), &types.FilesPostRequest{Key: args[0], Visibility: visibilityPtr(vis)}, nil)
	if err != nil {
		return err
	}
	if res.Upload == nil {
		return fmt.Errorf("service did not start an upload for %s", args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Upload.UploadID)
	return nil
}

func runMultipartPart(cmd *cobra.Command, args []string) error {
	vis, err := visibilityFlag(cmd)
	if err != nil {
		return err
	}
	key, uploadID := args[0], args[1]
	part, err := strconv.Atoi(args[2])
	if err != nil || part < 1 {
		return fmt.Errorf("invalid part number %q", args[2])
	}
	data, err := os.ReadFile(args[3])
	if err != nil {
		return err
	}
	api, err := newAPI(cmd)
	if err != nil {
		return err
	}

	file := &types.HTTPFile{Name: key, ContentType: contentTypeFor(args[3]), Data: data}
	res, err := api.FilesPut(cmd.Context(), file, key, &uploadID, &part, visibilityPtr(vis))
	if err != nil {
		return err
	}
	switch v := res.(type) {
	case *types.R2UploadedPart:
		fmt.Fprintf(cmd.OutOrStdout(), "%d:%s\n", part, v.ETag)
	case *types.R2Object:
		fmt.Fprintf(cmd.OutOrStdout(), "%d:%s\n", part, v.ETag)
	}
	return nil
}

// parsePartList reads "PART:ETAG" arguments
func parsePartList(args []string) ([]types.R2UploadedPartBody, error) {
	parts := make([]types.R2UploadedPartBody, 0, len(args))
	for _, arg := range args {
		num, etag, ok := strings.Cut(arg, ":")
		n, err := strconv.Atoi(num)
		if !ok || err != nil || n < 1 || etag == "" {
			return nil, fmt.Errorf("invalid part %q, want PART:ETAG", arg)
		}
		parts = append(parts, types.R2UploadedPartBody{PartNumber: n, ETag: etag})
	}
	return parts, nil
}

func runMultipartComplete(cmd *cobra.Command, args []string) error {
	vis, err := visibilityFlag(cmd)
	if err != nil {
		return err
	}
	key, uploadID := args[0], args[1]
	parts, err := parsePartList(args[2:])
	if err != nil {
		return err
	}
	api, err := newAPI(cmd)
	if err != nil {
		return err
	}

	res, err := api.FilesPost(cmd.Context(), &types.FilesPostRequest{Key: key, Visibility: visibilityPtr(vis), Parts: parts}, &uploadID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
