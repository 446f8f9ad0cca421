package cli

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"classifyd/internal/pipeline"
	"classifyd/internal/service"
	"classifyd/pkg/types"
)

func newPredictCmd(st *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "predict <image> [image...]",
		Short:   "Classify local images and print one JSON result per line",
		Example: "  classifyd predict --model-path model/brain_tumor_model.onnx scan.jpg",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service.Open(st.cfg, st.log, st.deps.Opener)
			if err != nil {
				return err
			}
			defer svc.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			failed := 0
			for _, path := range args {
				up, err := readUpload(path)
				if err != nil {
					return err
				}
				resp, err := svc.Predict(cmd.Context(), up)
				if err != nil {
					failed++
					st.log.Error().Str("file", path).Err(pipeline.Cause(err)).Msg(err.Error())
					continue
				}
				if err := enc.Encode(predictLine{File: path, PredictionResponse: resp}); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d images failed", failed, len(args))
			}
			return nil
		},
	}
	addPipelineFlags(cmd)
	return cmd
}

// predictLine is one line of predict output.
type predictLine struct {
	File string `json:"file"`
	types.PredictionResponse
}

// readUpload loads path as an upload, deriving the content type from the
// file extension.
func readUpload(path string) (pipeline.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Upload{}, fmt.Errorf("read image: %w", err)
	}
	return pipeline.Upload{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}
