package pdfadapter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"ballotroom/contexts/live-meetings/ballot-engine/ports"

	"github.com/go-pdf/fpdf"
)

// Renderer produces the final meeting report as a paginated PDF. The layout
// mirrors what organizers expect: title block, approved-participants table,
// one section per poll, and a closing notice that the data is gone.
type Renderer struct {
	Logger *slog.Logger
}

func (r Renderer) Render(_ context.Context, snapshot ports.ReportSnapshot) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 10, "Meeting Report", "", 1, "C", false, 0, "")
	doc.Ln(2)

	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 6, fmt.Sprintf("Meeting: %s", snapshot.Meeting.Title), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Organizer: %s", snapshot.Meeting.OrganizerName), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Meeting code: %s", snapshot.Meeting.Code), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Generated: %s", snapshot.GeneratedAt.Format("2006-01-02 15:04:05 UTC")), "", 1, "L", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(0, 8, fmt.Sprintf("Approved participants (%d)", len(snapshot.Participants)), "", 1, "L", false, 0, "")
	if len(snapshot.Participants) == 0 {
		doc.SetFont("Helvetica", "I", 10)
		doc.CellFormat(0, 6, "No approved participants.", "", 1, "L", false, 0, "")
	} else {
		doc.SetFont("Helvetica", "B", 10)
		doc.SetFillColor(230, 230, 230)
		doc.CellFormat(15, 7, "#", "1", 0, "C", true, 0, "")
		doc.CellFormat(95, 7, "Name", "1", 0, "L", true, 0, "")
		doc.CellFormat(70, 7, "Joined", "1", 1, "L", true, 0, "")
		doc.SetFont("Helvetica", "", 10)
		for i, participant := range snapshot.Participants {
			doc.CellFormat(15, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
			doc.CellFormat(95, 7, participant.Name, "1", 0, "L", false, 0, "")
			doc.CellFormat(70, 7, participant.JoinedAt.Format("2006-01-02 15:04:05"), "1", 1, "L", false, 0, "")
		}
	}
	doc.Ln(4)

	for i, poll := range snapshot.Polls {
		doc.SetFont("Helvetica", "B", 13)
		doc.CellFormat(0, 8, fmt.Sprintf("Poll %d: %s", i+1, poll.Question), "", 1, "L", false, 0, "")

		if poll.TotalVotes == 0 {
			doc.SetFont("Helvetica", "I", 10)
			doc.CellFormat(0, 6, "No votes were cast for this poll.", "", 1, "L", false, 0, "")
			doc.Ln(3)
			continue
		}

		doc.SetFont("Helvetica", "B", 10)
		doc.SetFillColor(230, 230, 230)
		doc.CellFormat(100, 7, "Option", "1", 0, "L", true, 0, "")
		doc.CellFormat(40, 7, "Votes", "1", 0, "C", true, 0, "")
		doc.CellFormat(40, 7, "Share", "1", 1, "C", true, 0, "")
		doc.SetFont("Helvetica", "", 10)
		for _, result := range poll.Results {
			doc.CellFormat(100, 7, result.Label, "1", 0, "L", false, 0, "")
			doc.CellFormat(40, 7, fmt.Sprintf("%d", result.Votes), "1", 0, "C", false, 0, "")
			doc.CellFormat(40, 7, fmt.Sprintf("%.1f%%", result.Percentage), "1", 1, "C", false, 0, "")
		}
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(0, 7, fmt.Sprintf("Total votes: %d", poll.TotalVotes), "", 1, "L", false, 0, "")
		doc.Ln(3)
	}

	doc.Ln(2)
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(0, 7, fmt.Sprintf("Votes across all polls: %d", snapshot.GrandTotal), "", 1, "L", false, 0, "")
	doc.Ln(4)
	doc.SetFont("Helvetica", "I", 9)
	doc.MultiCell(0, 5,
		"This report is the final record of the meeting. All meeting data, including "+
			"participants, polls and ballots, has been permanently erased after generation.",
		"", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		if r.Logger != nil {
			r.Logger.Error("pdf generation failed",
				"event", "report_pdf_output_failed",
				"module", "live-meetings/ballot-engine",
				"layer", "adapter",
				"meeting_id", snapshot.Meeting.MeetingID,
				"error", err.Error(),
			)
		}
		return nil, err
	}
	return buf.Bytes(), nil
}
