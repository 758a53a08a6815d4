// Package medicines persists scheduled medicines in the local SQLite
// database.
//
// A medicine row carries the owner's identifier (user_id) but no foreign key:
// the association is resolved with ListByUser and nothing cascades when the
// user signs out. Dose times live in medicine_times, ordered by position and
// stored as UTC unix milliseconds.
//
// Multi-statement operations (Insert followed by SetTimes, Delete) are meant
// to run on a *sql.Tx; see services.MedicineService.
package medicines
