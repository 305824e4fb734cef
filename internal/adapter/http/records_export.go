package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bujia-iot/iot-terminal/internal/app/service"
	"github.com/bujia-iot/iot-terminal/internal/domain/tcb_protocol"
	"github.com/bujia-iot/iot-terminal/pkg/storage"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	recordsSheetName = "Records"
)

// RecordsExportHeader 导出表头
var RecordsExportHeader = []string{"User ID", "Name", "Time", "Direction", "Method"}

var recordsColumnWidths = []float64{16, 16, 22, 12, 14}

// GenerateRecordsExport 生成考勤记录Excel文件，记录按传入顺序写入
func GenerateRecordsExport(views []service.RecordView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(recordsSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range RecordsExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(recordsSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(recordsSheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}

		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(recordsSheetName, name, name, recordsColumnWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, v := range views {
		info := recordInfoFromView(v)
		row := []interface{}{info.UserID, info.UserName, info.Time, info.Direction, info.Method}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(recordsSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func recordTime(r storage.AccessRecord) time.Time {
	return tcb_protocol.TimeFromTimestamp(r.Timestamp, nil)
}
