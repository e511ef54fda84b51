package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"umrahdesk/internal/domain"
	"umrahdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// ManifestExporter builds xlsx passenger manifests per departure for ground
// handling and visa processing.
type ManifestExporter struct {
	repo   domain.Repository
	dir    string
	logger *zerolog.Logger
}

func NewManifestExporter(repo domain.Repository, dir string, logger *zerolog.Logger) *ManifestExporter {
	if dir == "" {
		dir = "exports"
	}
	return &ManifestExporter{repo: repo, dir: dir, logger: logger}
}

var manifestHeader = []string{"No", "Booking Code", "Full Name", "Type", "Room", "Main Contact", "Price", "Status"}

// Export writes the manifest for one departure and returns the file path.
// Cancelled bookings are skipped.
func (e *ManifestExporter) Export(ctx context.Context, departureID string) (string, error) {
	departure, err := e.repo.GetDeparture(ctx, departureID)
	if err != nil {
		return "", fmt.Errorf("resolve departure: %w", err)
	}

	bookings, err := e.repo.ListBookingsByDeparture(ctx, departureID)
	if err != nil {
		return "", fmt.Errorf("list bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Manifest"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range manifestHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
	}

	row := 2
	seq := 1
	for _, booking := range bookings {
		if booking.Status == models.StatusCancelled {
			continue
		}

		passengers, err := e.repo.GetBookingPassengers(ctx, booking.ID)
		if err != nil {
			return "", fmt.Errorf("passengers for %s: %w", booking.Code, err)
		}

		for _, p := range passengers {
			main := ""
			if p.IsMainPassenger {
				main = "yes"
			}
			values := []interface{}{
				seq,
				booking.Code,
				p.FullName,
				string(p.PassengerType),
				string(p.RoomPreference),
				main,
				p.Price,
				booking.Status,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return "", fmt.Errorf("write row %d: %w", row, err)
				}
			}
			row++
			seq++
		}
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	name := fmt.Sprintf("manifest_%s_%s.xlsx", departure.DepartureDate.Format("20060102"), departureID)
	path := filepath.Join(e.dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save manifest: %w", err)
	}

	e.logger.Info().
		Str("departure_id", departureID).
		Int("passengers", seq-1).
		Str("path", path).
		Msg("manifest exported")

	return path, nil
}
