// Package domain models the Central Park Squirrel Census sighting data and
// the reshaping steps that turn raw rows into chart-ready tables.
//
// # Data Source
//
// Sightings come from the NYC Open Data "2018 Central Park Squirrel Census"
// export, one CSV row per squirrel sighting. Column headers in the export
// use mixed case and spaces ("Unique Squirrel ID", "Primary Fur Color");
// [NormalizeColumnName] maps them to snake case before anything else reads
// them.
//
// # Census Data Conventions
//
// Shift:
//
//	"AM" or "PM", the half of the day the sighting was recorded in.
//	Any other value is kept on the record but excluded from shift counts.
//
// Behaviour flags:
//
//	Activity columns (running, chasing, climbing, eating, foraging) and
//	interaction columns (approaches, indifferent, runs_from) hold the
//	strings "true"/"false" in any letter case. Only a case-insensitive
//	"true" counts; empty cells are null and never count.
//
// Location:
//
//	Either separate "lat" and "long" columns, or a single "Lat/Long" column
//	holding WKT point geometry:
//
//	  "POINT (-73.9656 40.7826)"  →  long = -73.9656, lat = 40.7826
//
//	Note the longitude comes first. Geometry that does not match, or whose
//	tokens are not finite numbers, yields nil coordinates rather than an
//	error. Sightings without coordinates are left off the map.
//
// Nulls:
//
//	Empty cells and pandas-style NA markers ("NaN", "NA", "null", ...)
//	are dropped at load time, so a null cell is simply an absent key in
//	the [Record].
package domain
