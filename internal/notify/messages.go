package notify

import (
	"fmt"
	"time"

	"greenpark/internal/db"
	"greenpark/internal/entities"
)

// statusTranslation translates a reservation status for the driver's language.
func statusTranslation(status, lang string) string {
	switch lang {
	case "es":
		switch status {
		case "pending":
			return "pendiente"
		case "checked_in":
			return "en curso"
		case "checked_out":
			return "finalizada"
		case "cancelled":
			return "cancelada"
		}
	case "it":
		switch status {
		case "pending":
			return "in attesa"
		case "checked_in":
			return "in corso"
		case "checked_out":
			return "conclusa"
		case "cancelled":
			return "annullata"
		}
	}
	switch status {
	case "checked_in":
		return "checked in"
	case "checked_out":
		return "checked out"
	}
	return status
}

func emailText(d entities.ReservationEmailData) (subject, body string) {
	switch d.Language {
	case "es":
		subject = fmt.Sprintf("Tu reserva en GreenPark está %s - Código: %s", d.Status, d.ReservationCode)
		body = fmt.Sprintf(
			"Hola %s,\n\nTu reserva en GreenPark está %s.\n\n"+
				"Detalles de la reserva:\n"+
				"Código de Reserva: %s\n"+
				"Categoría: %s\n"+
				"Vehículo: %s (Patente: %s)\n"+
				"Check-in: %s\n"+
				"Check-out: %s\n"+
				"Total: %s\n\n"+
				"Gracias por elegir GreenPark.\n\n"+
				"© %d GreenPark. Todos los derechos reservados.",
			d.UserName, d.Status, d.ReservationCode, d.Category, d.VehicleModel, d.VehiclePlate,
			d.StartTimeFormatted, d.EndTimeFormatted, d.TotalFormatted, d.CurrentYear,
		)
	case "it":
		subject = fmt.Sprintf("La tua prenotazione GreenPark è %s - Codice: %s", d.Status, d.ReservationCode)
		body = fmt.Sprintf(
			"Ciao %s,\n\nLa tua prenotazione presso GreenPark è %s.\n\n"+
				"Dettagli della prenotazione:\n"+
				"Codice prenotazione: %s\n"+
				"Categoria: %s\n"+
				"Veicolo: %s (Targa: %s)\n"+
				"Check-in: %s\n"+
				"Check-out: %s\n"+
				"Totale: %s\n\n"+
				"Grazie per aver scelto GreenPark.\n\n"+
				"© %d GreenPark. Tutti i diritti riservati.",
			d.UserName, d.Status, d.ReservationCode, d.Category, d.VehicleModel, d.VehiclePlate,
			d.StartTimeFormatted, d.EndTimeFormatted, d.TotalFormatted, d.CurrentYear,
		)
	default:
		subject = fmt.Sprintf("Your GreenPark reservation is %s - Code: %s", d.Status, d.ReservationCode)
		body = fmt.Sprintf(
			"Hello %s,\n\nYour reservation at GreenPark is %s.\n\n"+
				"Reservation Details:\n"+
				"Reservation Code: %s\n"+
				"Category: %s\n"+
				"Vehicle: %s (Plate: %s)\n"+
				"Check-in: %s\n"+
				"Check-out: %s\n"+
				"Total: %s\n\n"+
				"Thank you for choosing GreenPark.\n\n"+
				"© %d GreenPark. All rights reserved.",
			d.UserName, d.Status, d.ReservationCode, d.Category, d.VehicleModel, d.VehiclePlate,
			d.StartTimeFormatted, d.EndTimeFormatted, d.TotalFormatted, d.CurrentYear,
		)
	}
	return subject, body
}

func smsText(res db.Reservation, status string, loc *time.Location) string {
	checkIn := res.CheckIn.In(loc).Format("02/01 15:04")
	switch res.Language {
	case "es":
		return fmt.Sprintf("GreenPark: ¡Tu reserva %s está %s!\nCheck-in: %s.\nMás detalles en tu correo.", res.Code, status, checkIn)
	case "it":
		return fmt.Sprintf("GreenPark: La tua prenotazione %s è %s!\nCheck-in: %s.\nAltri dettagli nella tua email.", res.Code, status, checkIn)
	default:
		return fmt.Sprintf("GreenPark: Reservation %s is %s!\nCheck-in: %s.\nMore details in your email.", res.Code, status, checkIn)
	}
}
