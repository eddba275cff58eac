package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ryu-ryuk/omnidim-go/internal/output"
	"github.com/ryu-ryuk/omnidim-go/internal/payload"
	"github.com/ryu-ryuk/omnidim-go/internal/views"
)

var (
	kbFilename  string
	kbSkipCheck bool
	kbFileType  string
	kbWhenToUse string
	kbForce     bool
)

var kbCmd = &cobra.Command{
	Use:     "kb",
	Aliases: []string{"knowledge-base"},
	Short:   "Manage knowledge base documents",
}

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge base files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.KnowledgeBase.List(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, resp, views.FileColumns(), views.FileListKeys...)
	},
}

var kbCreateCmd = &cobra.Command{
	Use:   "create <file.pdf>",
	Short: "Upload a PDF",
	Long:  "Upload a PDF to the knowledge base. The account quota is checked first unless --skip-check is given.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := payload.ReadPDF(args[0])
		if err != nil {
			return err
		}
		if kbFilename != "" {
			doc.Name = kbFilename
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		if !kbSkipCheck {
			check, err := client.KnowledgeBase.CanUpload(cmd.Context(), doc.Size, "pdf")
			if err != nil {
				return err
			}
			if ok, msg := payload.UploadAllowed(check.Object()); !ok {
				return fmt.Errorf("cannot upload %s: %s", doc.Name, msg)
			}
		}
		logger.Debug("uploading file", "name", doc.Name, "bytes", doc.Size)
		resp, err := client.KnowledgeBase.Create(cmd.Context(), doc.Data, doc.Name)
		if err != nil {
			return err
		}
		return done(cmd, resp, "Uploaded %s (%s)", doc.Name, output.FileSize(doc.Size))
	},
}

var kbCanUploadCmd = &cobra.Command{
	Use:   "can-upload <file>",
	Short: "Check whether a file fits the upload quota",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := os.Stat(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.KnowledgeBase.CanUpload(cmd.Context(), info.Size(), kbFileType)
		if err != nil {
			return err
		}
		if outFormat != output.FormatTable {
			return render(cmd, resp, nil)
		}
		if ok, msg := payload.UploadAllowed(resp.Object()); !ok {
			output.Warning(cmd.OutOrStdout(), "Upload not allowed: %s", msg)
		} else {
			output.Success(cmd.OutOrStdout(), "%s (%s) can be uploaded", info.Name(), output.FileSize(info.Size()))
		}
		if quota, ok := resp.Field("quota"); ok {
			if m, ok := quota.(map[string]any); ok {
				output.KeyValues(cmd.OutOrStdout(), m)
			}
		}
		return nil
	},
}

var kbDeleteCmd = &cobra.Command{
	Use:   "delete <file-id>",
	Short: "Delete a file from the knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := idArg(args, 0, "file ID")
		if err != nil {
			return err
		}
		if ok, err := confirm(cmd, fmt.Sprintf("Delete file %d", id), kbForce); err != nil || !ok {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.KnowledgeBase.Delete(cmd.Context(), id)
		if err != nil {
			return err
		}
		return done(cmd, resp, "File %d deleted", id)
	},
}

var kbAttachCmd = &cobra.Command{
	Use:     "attach <agent-id> <file-ids>",
	Short:   "Make files available to an agent",
	Example: `  omnidim kb attach 42 7,8 --when "Questions about the menu"`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		agentID, fileIDs, err := agentAndFiles(args)
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.KnowledgeBase.Attach(cmd.Context(), fileIDs, agentID, strings.TrimSpace(kbWhenToUse))
		if err != nil {
			return err
		}
		return done(cmd, resp, "Attached %d file(s) to agent %d", len(fileIDs), agentID)
	},
}

var kbDetachCmd = &cobra.Command{
	Use:   "detach <agent-id> <file-ids>",
	Short: "Remove files from an agent",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		agentID, fileIDs, err := agentAndFiles(args)
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.KnowledgeBase.Detach(cmd.Context(), fileIDs, agentID)
		if err != nil {
			return err
		}
		return done(cmd, resp, "Detached %d file(s) from agent %d", len(fileIDs), agentID)
	},
}

func agentAndFiles(args []string) (int, []int, error) {
	agentID, err := idArg(args, 0, "agent ID")
	if err != nil {
		return 0, nil, err
	}
	fileIDs, err := payload.ParseIDs(args[1])
	if err != nil {
		return 0, nil, err
	}
	return agentID, fileIDs, nil
}

func init() {
	kbCreateCmd.Flags().StringVar(&kbFilename, "filename", "", "name to store the file under (default: the file's base name)")
	kbCreateCmd.Flags().BoolVar(&kbSkipCheck, "skip-check", false, "skip the quota check")
	kbCanUploadCmd.Flags().StringVar(&kbFileType, "type", "pdf", "file type")
	kbDeleteCmd.Flags().BoolVarP(&kbForce, "force", "f", false, "delete without confirmation")
	kbAttachCmd.Flags().StringVar(&kbWhenToUse, "when", "", "tell the agent when to consult these files")

	kbCmd.AddCommand(kbListCmd, kbCreateCmd, kbCanUploadCmd, kbDeleteCmd, kbAttachCmd, kbDetachCmd)
	rootCmd.AddCommand(kbCmd)
}
