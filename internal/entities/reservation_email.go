package entities

type ReservationEmailData struct {
	UserName           string
	ReservationCode    string
	Category           string
	VehicleModel       string
	VehiclePlate       string
	StartTimeFormatted string
	EndTimeFormatted   string
	TotalFormatted     string
	CurrentYear        int
	Language           string
	Status             string
}
