package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mansoorceksport/fileupload/internal/client"
	"github.com/mansoorceksport/fileupload/internal/uploadform"
	"github.com/spf13/cobra"
)

const progressWidth = 30

var errUploadFailed = errors.New("upload failed")

func uploadCmd() *cobra.Command {
	var (
		name     string
		path     string
		endpoint string
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Validate and upload a file",
		Example: `  uploadctl upload --name "Ada" --file ./scan.png
  uploadctl upload -n "Ada" -f report.pdf --endpoint http://files.internal/api/upload`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, name, path, endpoint)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Your name")
	cmd.Flags().StringVarP(&path, "file", "f", "", "File to upload (JPEG, PNG or PDF)")
	cmd.Flags().StringVar(&endpoint, "endpoint", envOr("UPLOAD_ENDPOINT", client.DefaultEndpoint), "Upload endpoint URL")

	return cmd
}

func runUpload(cmd *cobra.Command, name, path, endpoint string) error {
	out := cmd.OutOrStdout()

	urls, err := uploadform.NewTempObjectURLs("")
	if err != nil {
		return err
	}
	defer urls.Close()

	uploader := client.New(endpoint)
	r := &terminalRenderer{out: out, base: endpoint}
	form := uploadform.NewForm(uploader, urls, r.render)
	defer form.Close()

	form.SetName(name)
	if path != "" {
		file, err := uploadform.FileFromPath(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Selected %s (%s, %s)\n", file.Name, file.MIMEType, humanize.IBytes(uint64(file.Size)))
		if _, err := form.Select(file); err != nil {
			return err
		}
		printPreview(out, form.Preview())
	}

	state, err := form.Submit(cmd.Context())
	if err != nil {
		return err
	}
	if state.Phase != uploadform.PhaseSucceeded {
		return errUploadFailed
	}
	return nil
}

func printPreview(out io.Writer, p uploadform.Preview) {
	switch p.Kind {
	case uploadform.PreviewImage:
		fmt.Fprintf(out, "Preview: %s\n", p.URL)
	case uploadform.PreviewDocument:
		fmt.Fprintf(out, "Preview: 📄 %s\n", p.Name)
	}
}

// terminalRenderer draws each form state on a terminal
type terminalRenderer struct {
	out  io.Writer
	base string
}

func (r *terminalRenderer) render(s uploadform.State) {
	switch s.Phase {
	case uploadform.PhaseInvalid:
		r.fieldErrors(s.FieldErrors)
	case uploadform.PhaseUploading:
		fmt.Fprintf(r.out, "\r%s", progressBar(s.Progress))
	case uploadform.PhaseSucceeded:
		fmt.Fprintf(r.out, "\n✓ %s\n", s.Outcome.Message)
		if up := s.Outcome.Upload; up != nil && up.Filename != "" {
			fmt.Fprintf(r.out, "Uploaded as: %s\n", up.Filename)
			fmt.Fprintf(r.out, "URL: %s\n", resolveURL(r.base, up.URL))
		}
	case uploadform.PhaseFailed:
		fmt.Fprintf(r.out, "\n✗ %s\n", s.Outcome.Message)
	}
}

func (r *terminalRenderer) fieldErrors(errs uploadform.FieldErrors) {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(r.out, "%s: %s\n", k, errs[k])
	}
}

func progressBar(percent int) string {
	filled := percent * progressWidth / 100
	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("#", filled), strings.Repeat(".", progressWidth-filled), percent)
}

// resolveURL makes a server-relative path absolute against the endpoint
func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
