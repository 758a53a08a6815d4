package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/medreminder/internal/client/models"
	"github.com/dmitrijs2005/medreminder/internal/common"
)

// dueWindow is how far ahead the due command looks.
const dueWindow = 24 * time.Hour

const timeLayout = "2006-01-02 15:04"

func (a *App) currentUser() (string, error) {
	admin := a.controller.State().Admin
	if admin == nil {
		a.println("Please login first")
		return "", errNotLoggedIn
	}
	return string(admin.Email), nil
}

func (a *App) askInt(prompt string) (int, error) {
	s, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		a.printf("Not a number: %q\n", s)
		return 0, err
	}
	return n, nil
}

func (a *App) AddMedicine(ctx context.Context) error {
	userID, err := a.currentUser()
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Medicine name", a.out)
	if err != nil {
		return err
	}
	compartment, err := a.askInt("Compartment")
	if err != nil {
		return err
	}
	number, err := a.askInt("Pills per dose")
	if err != nil {
		return err
	}
	rawTimes, err := getSimpleText(a.reader, "Dose times (HH:MM or RFC 3339, space separated)", a.out)
	if err != nil {
		return err
	}
	times, err := parseTimes(rawTimes, a.now())
	if err != nil {
		a.println("Error:", err)
		return err
	}

	m := &models.Medicine{Name: name, Compartment: compartment, Number: number, Times: times, UserID: userID}
	id, err := a.medicines.Add(ctx, m)
	if err != nil {
		a.println(describeMedicineErr(err))
		return err
	}
	a.printf("Added medicine #%d\n", id)
	return nil
}

func (a *App) ListMedicines(ctx context.Context) error {
	userID, err := a.currentUser()
	if err != nil {
		return err
	}

	list, err := a.medicines.ListForUser(ctx, userID)
	if err != nil {
		a.println(describeMedicineErr(err))
		return err
	}
	if len(list) == 0 {
		a.println("No medicines")
		return nil
	}
	for _, m := range list {
		times := make([]string, 0, len(m.Times))
		for _, t := range m.Times {
			times = append(times, t.In(a.now().Location()).Format(timeLayout))
		}
		a.printf("#%d %s compartment=%d number=%d at %s\n", m.ID, m.Name, m.Compartment, m.Number, strings.Join(times, ", "))
	}
	return nil
}

func (a *App) DeleteMedicine(ctx context.Context) error {
	userID, err := a.currentUser()
	if err != nil {
		return err
	}
	id, err := a.askInt("Medicine ID")
	if err != nil {
		return err
	}

	m, err := a.medicines.Get(ctx, int64(id))
	if err == nil && m.UserID != userID {
		err = common.ErrorNotFound
	}
	if err == nil {
		err = a.medicines.Delete(ctx, int64(id))
	}
	if err != nil {
		a.println(describeMedicineErr(err))
		return err
	}
	a.println("Deleted")
	return nil
}

func (a *App) Due(ctx context.Context) error {
	userID, err := a.currentUser()
	if err != nil {
		return err
	}

	now := a.now()
	due, err := a.medicines.Due(ctx, userID, now, dueWindow)
	if err != nil {
		a.println(describeMedicineErr(err))
		return err
	}
	if len(due) == 0 {
		a.println("Nothing due in the next 24h")
		return nil
	}
	for _, r := range due {
		a.printf("%s  %s x%d (compartment %d)\n", r.At.In(now.Location()).Format(timeLayout), r.Name, r.Number, r.Compartment)
	}
	return nil
}

func describeMedicineErr(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidMedicine):
		return fmt.Sprintf("Invalid medicine: %v", err)
	case errors.Is(err, common.ErrorNotFound):
		return "No such medicine"
	default:
		return "Error: " + err.Error()
	}
}
