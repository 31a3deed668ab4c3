package mediadb

import "fmt"

const manufacturerSeriesSchema = `
CREATE TABLE IF NOT EXISTS manufacturer
(
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS manufacturer_name_index
    ON manufacturer (name);

CREATE TABLE IF NOT EXISTS series
(
    id              INTEGER PRIMARY KEY,
    manufacturer_id INTEGER NOT NULL
        REFERENCES manufacturer ON DELETE CASCADE,
    name            TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS series_manufacturer_id_index
    ON series (manufacturer_id);

CREATE INDEX IF NOT EXISTS series_name_index
    ON series (name);
`

const gelSchema = `
CREATE TABLE IF NOT EXISTS gel
(
    id        INTEGER PRIMARY KEY,
    dcid      TEXT    NOT NULL,
    series_id INTEGER NOT NULL
        REFERENCES series ON DELETE CASCADE,
    code      TEXT    NOT NULL,
    name      TEXT    NOT NULL,
    red       INTEGER NOT NULL,
    green     INTEGER NOT NULL,
    blue      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS gel_name_index
    ON gel (name);

-- Finds the gel a saved profile refers to.
CREATE INDEX IF NOT EXISTS gel_name_red_green_blue_index
    ON gel (name, red, green, blue);

CREATE INDEX IF NOT EXISTS gel_red_green_blue_index
    ON gel (red, green, blue);

CREATE INDEX IF NOT EXISTS gel_series_id_code_index
    ON gel (series_id, code);

CREATE INDEX IF NOT EXISTS gel_series_id_index
    ON gel (series_id);
`

func imageSchema(table string) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s
(
    id        INTEGER PRIMARY KEY,
    dcid      TEXT    NOT NULL,
    series_id INTEGER NOT NULL
        REFERENCES series ON DELETE CASCADE,
    code      TEXT    NOT NULL,
    name      TEXT    NOT NULL,
    image     BLOB    NOT NULL
);

CREATE INDEX IF NOT EXISTS %[1]s_name_index
    ON %[1]s (name);

CREATE INDEX IF NOT EXISTS %[1]s_series_id_code_index
    ON %[1]s (series_id, code);

CREATE INDEX IF NOT EXISTS %[1]s_series_id_index
    ON %[1]s (series_id);
`, table)
}
