package notify

import (
	"fmt"

	"umrahdesk/internal/models"
)

// BookingConfirmedText renders the pilgrim-facing confirmation message.
func BookingConfirmedText(pilgrimName string, booking *models.Booking, departure *models.Departure) string {
	return fmt.Sprintf(
		"Assalamu'alaikum %s,\n\n"+
			"Booking Anda telah dikonfirmasi.\n"+
			"Kode booking: %s\n"+
			"Keberangkatan: %s s/d %s\n"+
			"Jumlah jamaah: %d\n"+
			"Total: Rp %d\n"+
			"Sisa pembayaran: Rp %d\n\n"+
			"Terima kasih.",
		pilgrimName,
		booking.Code,
		departure.DepartureDate.Format("02 Jan 2006"),
		departure.ReturnDate.Format("02 Jan 2006"),
		booking.TotalPax,
		booking.TotalPrice,
		booking.RemainingAmount(),
	)
}

// PaymentReceivedText renders the pilgrim-facing payment receipt message.
func PaymentReceivedText(pilgrimName string, booking *models.Booking, amount int64) string {
	return fmt.Sprintf(
		"Assalamu'alaikum %s,\n\n"+
			"Pembayaran sebesar Rp %d untuk booking %s telah kami terima.\n"+
			"Total dibayar: Rp %d\n"+
			"Sisa pembayaran: Rp %d\n\n"+
			"Terima kasih.",
		pilgrimName,
		amount,
		booking.Code,
		booking.PaidAmount,
		booking.RemainingAmount(),
	)
}

// ManagerAlertText renders the back-office alert for a new or updated booking.
func ManagerAlertText(eventType string, booking *models.Booking, pilgrimName string) string {
	return fmt.Sprintf("[%s] %s — %s, %d pax, total Rp %d, status %s",
		eventType, booking.Code, pilgrimName, booking.TotalPax, booking.TotalPrice, booking.Status)
}
