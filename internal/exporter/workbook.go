package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"mtracecli/pkg/contracts/domain"
)

// Workbook sheet names.
const (
	SheetRecords    = "Records"
	SheetEvents     = "Events"
	SheetStatistics = "Statistics"
	SheetHourly     = "Hourly"
)

// WriteWorkbook writes the payload as an xlsx workbook with the sheets
// Records, Events, Statistics and Hourly.
func WriteWorkbook(filePath string, payload domain.ExportPayload) error {
	slog.Info("Writing workbook export",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(payload.Records)),
		slog.Int("event_count", len(payload.Events)))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetRecords); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetEvents, SheetStatistics, SheetHourly} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	headers := RecordHeaders()
	records := make([][]interface{}, len(payload.Records))
	for i, rec := range payload.Records {
		row := make([]interface{}, len(headers))
		for j, h := range headers {
			row[j] = rec[h]
		}
		records[i] = row
	}
	if err := streamSheet(f, SheetRecords, toCells(headers), records, bold); err != nil {
		return err
	}

	events := make([][]interface{}, len(payload.Events))
	for i, env := range payload.Events {
		events[i] = toCells(eventRow(env))
	}
	if err := streamSheet(f, SheetEvents, toCells(EventHeaders), events, bold); err != nil {
		return err
	}

	if err := streamSheet(f, SheetStatistics, []interface{}{"metric", "key", "value"}, statisticsRows(payload.Statistics), bold); err != nil {
		return err
	}

	hourly := make([][]interface{}, len(payload.Statistics.HourlyHistogram))
	for hour, n := range payload.Statistics.HourlyHistogram {
		hourly[hour] = []interface{}{hour, n}
	}
	if err := streamSheet(f, SheetHourly, []interface{}{"hour", "count"}, hourly, bold); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// streamSheet writes a header row followed by rows using excelize's stream
// writer, which keeps memory flat for large record sets.
func streamSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, headerStyle int) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet %s: %w", sheet, err)
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return sw.Flush()
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// statisticsRows flattens the bundle into metric/key/value rows. Scalars
// have an empty key; grouped counts emit one row per entry.
func statisticsRows(s domain.StatisticsBundle) [][]interface{} {
	var rows [][]interface{}
	scalar := func(name string, v interface{}) {
		rows = append(rows, []interface{}{name, "", v})
	}
	grouped := func(name string, entries []domain.CountEntry) {
		for _, e := range entries {
			rows = append(rows, []interface{}{name, e.Key, e.Count})
		}
	}

	scalar("totalRecords", s.TotalRecords)
	scalar("timestampedRecords", s.TimestampedRecords)
	scalar("unparsableTimestamps", s.UnparsableTimestamps)
	scalar("uniqueMessages", s.UniqueMessages)
	scalar("uniqueSenders", s.UniqueSenders)
	scalar("uniqueRecipients", s.UniqueRecipients)
	scalar("uniqueSubjects", s.UniqueSubjects)
	scalar("uniqueSenderDomains", s.UniqueSenderDomains)
	scalar("uniqueRecipientDomains", s.UniqueRecipientDomains)
	scalar("peakHour", s.PeakHour)
	scalar("peakHourCount", s.PeakHourCount)
	scalar("busiestDay", s.BusiestDay)
	scalar("busiestDayCount", s.BusiestDayCount)
	scalar("busiestWeekday", s.BusiestWeekday)
	scalar("busiestWeekdayCount", s.BusiestWeekdayCount)
	scalar("firstEvent", s.FirstEvent)
	scalar("lastEvent", s.LastEvent)
	scalar("totalBytes", s.TotalBytes)
	scalar("averageMessageBytes", formatFloat(s.AverageMessageBytes))
	scalar("largestMessageBytes", s.LargestMessageBytes)
	scalar("delivered", s.Delivered)
	scalar("failed", s.Failed)
	scalar("deliveryRate", formatFloat(s.DeliveryRate))
	scalar("failureRate", formatFloat(s.FailureRate))
	scalar("spam", s.Spam)
	scalar("phishing", s.Phishing)
	scalar("malware", s.Malware)
	scalar("bulk", s.Bulk)
	scalar("quarantined", s.Quarantined)
	scalar("clean", s.Clean)
	scalar("dkimFailures", s.DKIMFailures)
	scalar("spfFailures", s.SPFFailures)
	scalar("dmarcFailures", s.DMARCFailures)
	scalar("authFailures", s.AuthFailures)
	scalar("authFailureRate", formatFloat(s.AuthFailureRate))
	scalar("threatRate", formatFloat(s.ThreatRate))

	grouped("topSenders", s.TopSenders)
	grouped("topRecipients", s.TopRecipients)
	grouped("topSenderDomains", s.TopSenderDomains)
	grouped("topRecipientDomains", s.TopRecipientDomains)
	grouped("topSubjects", s.TopSubjects)
	grouped("topClientIps", s.TopClientIPs)
	grouped("eventTypes", s.EventTypes)
	grouped("directions", s.Directions)
	grouped("sources", s.Sources)
	grouped("recipientStatuses", s.RecipientStatuses)
	grouped("dailyHistogram", s.DailyHistogram)
	grouped("weekdayHistogram", s.WeekdayHistogram)
	grouped("sizeDistribution", s.SizeDistribution)
	grouped("threatCategories", s.ThreatCategories)
	return rows
}
