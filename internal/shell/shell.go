package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/teagang/dealership/internal/domain/models"
	"github.com/teagang/dealership/internal/service/dealer"
	"github.com/teagang/dealership/internal/service/reporting"
)

const menu = `
1 - Find vehicles within a price range
2 - Find vehicles by make / model
3 - Find vehicles by year range
4 - Find vehicles by color
5 - Find vehicles by mileage range
6 - Find vehicles by type (car, truck, SUV, van)
7 - List ALL vehicles
8 - Add a vehicle
9 - Remove a vehicle
S - Sell a vehicle
L - Lease a vehicle
0 - Quit
`

const listingHeader = `VIN    YEAR MAKE       MODEL        TYPE   COLOR        MILEAGE         PRICE
------ ---- ---------- ------------ ------ ---------- --------- -------------`

// Dealer is the inventory surface the shell drives.
type Dealer interface {
	Dealership() models.Dealership
	Vehicles() []models.Vehicle
	ByPrice(min, max decimal.Decimal) []models.Vehicle
	ByMakeModel(makeFilter, modelFilter string) []models.Vehicle
	ByYear(min, max int) []models.Vehicle
	ByColor(color string) []models.Vehicle
	ByMileage(min, max int64) []models.Vehicle
	ByType(vehicleType string) []models.Vehicle
	AddVehicle(ctx context.Context, v models.Vehicle, replace bool) (bool, error)
	RemoveVehicle(ctx context.Context, vin int) error
	LoadStats() models.LoadStats
	Repair(ctx context.Context, records []string) (models.LoadStats, error)
	Sell(ctx context.Context, req dealer.DealRequest) (models.Contract, error)
	Lease(ctx context.Context, req dealer.DealRequest) (models.Contract, error)
}

// Shell is the line-oriented terminal menu. Input ending early quits cleanly.
type Shell struct {
	svc    Dealer
	in     *bufio.Scanner
	out    io.Writer
	logger *zap.Logger
}

// New builds a shell reading commands from in and writing to out.
func New(svc Dealer, in io.Reader, out io.Writer, logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shell{svc: svc, in: bufio.NewScanner(in), out: out, logger: logger}
}

// Run prints the load report, offers to repair bad records and then serves
// the menu until the operator quits or input ends.
func (s *Shell) Run(ctx context.Context) error {
	stats := s.svc.LoadStats()
	s.printf("%s", reporting.FormatLoadReport(stats))
	if len(stats.BadRecords) > 0 {
		s.offerRepair(ctx, stats.BadRecords)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printHeader()
		s.printf("%s", menu)
		choice, ok := s.prompt("Choose an option: ")
		if !ok {
			return nil
		}

		switch strings.ToUpper(choice) {
		case "1":
			s.priceRange()
		case "2":
			s.makeModel()
		case "3":
			s.yearRange()
		case "4":
			s.color()
		case "5":
			s.mileageRange()
		case "6":
			s.vehicleType()
		case "7":
			s.display(s.svc.Vehicles())
		case "8":
			s.addVehicle(ctx)
		case "9":
			s.removeVehicle(ctx)
		case "S":
			s.deal(ctx, models.ContractSale)
		case "L":
			s.deal(ctx, models.ContractLease)
		case "0":
			s.printf("\nGoodbye!\n")
			return nil
		default:
			s.printf("Invalid option. Try again.\n")
		}
	}
}

func (s *Shell) offerRepair(ctx context.Context, badRecords []string) {
	s.printf("\nSome records were skipped due to invalid data:\n")
	for _, bad := range badRecords {
		s.printf("   %s\n", bad)
	}

	answer, ok := s.prompt("\nWould you like to fix these now? (yes/no) ")
	if !ok || !isYes(answer) {
		s.printf("Skipped fixing. You can fix them later.\n")
		return
	}

	fixed := make([]string, 0, len(badRecords))
	for _, bad := range badRecords {
		s.printf("\nInvalid record detected: %s\n", bad)
		s.printf("Please re-enter the full line in this format:\nVIN|Year|Make|Model|Type|Color|Odometer|Price\n")
		line, ok := s.prompt("> ")
		if !ok {
			break
		}
		fixed = append(fixed, line)
	}

	stats, err := s.svc.Repair(ctx, fixed)
	if err != nil {
		s.printf("Could not save the repaired inventory: %v\n", err)
		return
	}
	s.printf("Repaired %d record(s), %d still invalid, %d duplicate(s).\n", stats.Loaded, stats.Skipped, stats.Duplicate)
}

func (s *Shell) printHeader() {
	d := s.svc.Dealership()
	s.printf("\n=========================================================\n")
	s.printf("   %s  -  %s  -  %s\n", d.Name, d.Address, d.Phone)
	s.printf("=========================================================\n")
}

func (s *Shell) priceRange() {
	min, ok := s.readDecimal("Min price: ")
	if !ok {
		return
	}
	max, ok := s.readDecimal("Max price: ")
	if !ok {
		return
	}
	s.display(s.svc.ByPrice(min, max))
}

func (s *Shell) makeModel() {
	makeFilter, _ := s.prompt("Make (blank = any): ")
	modelFilter, _ := s.prompt("Model (blank = any): ")
	s.display(s.svc.ByMakeModel(makeFilter, modelFilter))
}

func (s *Shell) yearRange() {
	min, ok := s.readInt("Min year: ")
	if !ok {
		return
	}
	max, ok := s.readInt("Max year: ")
	if !ok {
		return
	}
	s.display(s.svc.ByYear(int(min), int(max)))
}

func (s *Shell) color() {
	color, _ := s.prompt("Color: ")
	s.display(s.svc.ByColor(color))
}

func (s *Shell) mileageRange() {
	min, ok := s.readInt("Min mileage: ")
	if !ok {
		return
	}
	max, ok := s.readInt("Max mileage: ")
	if !ok {
		return
	}
	s.display(s.svc.ByMileage(min, max))
}

func (s *Shell) vehicleType() {
	vehicleType, _ := s.prompt("Type (car, truck, suv, van, ...): ")
	s.display(s.svc.ByType(vehicleType))
}

func (s *Shell) addVehicle(ctx context.Context) {
	s.printf("\nAdd Vehicle\n")

	vin, ok := s.readInt("VIN (int): ")
	if !ok {
		return
	}
	year, ok := s.readInt("Year: ")
	if !ok {
		return
	}
	makeName, _ := s.prompt("Make: ")
	model, _ := s.prompt("Model: ")
	vehicleType, _ := s.prompt("Type (car/truck/suv/van): ")
	color, _ := s.prompt("Color: ")
	odometer, ok := s.readInt("Odometer (miles): ")
	if !ok {
		return
	}
	price, ok := s.readDecimal("Price: ")
	if !ok {
		return
	}

	v := models.Vehicle{
		VIN:      int(vin),
		Year:     int(year),
		Make:     makeName,
		Model:    model,
		Type:     strings.ToLower(vehicleType),
		Color:    color,
		Odometer: odometer,
		Price:    price,
	}

	_, err := s.svc.AddVehicle(ctx, v, false)
	if errors.Is(err, models.ErrDuplicateVIN) {
		s.printf("\nA vehicle with VIN %d already exists in inventory.\n", v.VIN)
		answer, _ := s.prompt("Would you like to replace it? (yes/no): ")
		if !isYes(answer) {
			s.printf("Skipped adding duplicate VIN: %d\n", v.VIN)
			return
		}
		if _, err = s.svc.AddVehicle(ctx, v, true); err == nil {
			s.printf("Existing vehicle replaced and inventory saved.\n")
			return
		}
	}
	if err != nil {
		s.printf("Could not add vehicle: %v\n", err)
		return
	}
	s.printf("Vehicle added and inventory saved.\n")
}

func (s *Shell) removeVehicle(ctx context.Context) {
	s.printf("\nRemove Vehicle\n")
	vin, ok := s.readInt("Enter VIN to remove: ")
	if !ok {
		return
	}

	err := s.svc.RemoveVehicle(ctx, int(vin))
	switch {
	case errors.Is(err, models.ErrVehicleNotFound):
		s.printf("No vehicle with that VIN was found.\n")
	case err != nil:
		s.printf("Could not remove vehicle: %v\n", err)
	default:
		s.printf("Vehicle removed and inventory saved.\n")
	}
}

func (s *Shell) deal(ctx context.Context, kind models.ContractKind) {
	vin, ok := s.readInt("VIN: ")
	if !ok {
		return
	}
	name, _ := s.prompt("Customer name: ")
	email, _ := s.prompt("Customer email: ")

	req := dealer.DealRequest{VIN: int(vin), CustomerName: name, CustomerEmail: email}
	record := s.svc.Lease
	if kind == models.ContractSale {
		answer, _ := s.prompt("Finance this purchase? (yes/no): ")
		req.Financed = isYes(answer)
		record = s.svc.Sell
	}

	contract, err := record(ctx, req)
	if err != nil {
		s.printf("Could not record contract: %v\n", err)
		return
	}

	s.printf("Contract saved: total $%s", contract.TotalPrice().StringFixed(2))
	if monthly := contract.MonthlyPayment(); monthly.IsPositive() {
		s.printf(", monthly $%s", monthly.StringFixed(2))
	}
	s.printf("\n")
}

func (s *Shell) display(vehicles []models.Vehicle) {
	if len(vehicles) == 0 {
		s.printf("No matching vehicles found.\n")
		return
	}
	s.printf("%s\n", listingHeader)
	for _, v := range vehicles {
		s.printf("%s\n", v)
	}
}

func (s *Shell) prompt(label string) (string, bool) {
	s.printf("%s", label)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Shell) readInt(label string) (int64, bool) {
	for {
		raw, ok := s.prompt(label)
		if !ok {
			return 0, false
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			return n, true
		}
		s.printf("  Please enter a whole number.\n")
	}
}

func (s *Shell) readDecimal(label string) (decimal.Decimal, bool) {
	for {
		raw, ok := s.prompt(label)
		if !ok {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(raw)
		if err == nil {
			return d, true
		}
		s.printf("  Please enter a number (e.g., 12345.67).\n")
	}
}

func (s *Shell) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(s.out, format, args...); err != nil {
		s.logger.Debug("shell write failed", zap.Error(err))
	}
}

func isYes(answer string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y")
}
