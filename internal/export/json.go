package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/hardgas/internal/dynamo"
	"github.com/san-kum/hardgas/internal/metrics"
	"github.com/san-kum/hardgas/internal/storage"
)

type ExportData struct {
	Run      *storage.RunMetadata     `json:"run"`
	Steps    int                      `json:"steps"`
	Times    []float64                `json:"times"`
	States   [][]float64              `json:"states"`
	Pressure []metrics.PressureSample `json:"pressure"`
}

func NewExportData(meta *storage.RunMetadata, states []dynamo.Snapshot, pressure []metrics.PressureSample) *ExportData {
	data := &ExportData{
		Run:      meta,
		Steps:    len(states),
		Times:    make([]float64, len(states)),
		States:   make([][]float64, len(states)),
		Pressure: pressure,
	}
	for i, s := range states {
		data.Times[i] = s.Time
		data.States[i] = s.State
	}
	if data.Pressure == nil {
		data.Pressure = []metrics.PressureSample{}
	}
	return data
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, data)
}

func ExportJSONStdout(data *ExportData) error {
	return WriteJSON(os.Stdout, data)
}
