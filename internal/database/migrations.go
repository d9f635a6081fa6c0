package database

import "github.com/jmoiron/sqlx"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS activities (
	id UUID PRIMARY KEY,
	name VARCHAR(200) NOT NULL,
	slug VARCHAR(200) UNIQUE NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category VARCHAR(50) NOT NULL,
	price NUMERIC(10,2) NOT NULL,
	currency VARCHAR(3) NOT NULL DEFAULT 'USD',
	duration_minutes INTEGER NOT NULL,
	capacity_per_slot INTEGER NOT NULL CHECK (capacity_per_slot > 0),
	location VARCHAR(200) NOT NULL DEFAULT '',
	pending_hold_minutes INTEGER NOT NULL DEFAULT 30 CHECK (pending_hold_minutes > 0),
	cancellation_deadline_hours INTEGER NOT NULL DEFAULT 24 CHECK (cancellation_deadline_hours >= 0),
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_activities_category_active ON activities(category, is_active);

CREATE TABLE IF NOT EXISTS time_slots (
	id UUID PRIMARY KEY,
	activity_id UUID NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ NOT NULL,
	capacity INTEGER NOT NULL CHECK (capacity > 0),
	booked_count INTEGER NOT NULL DEFAULT 0,
	is_available BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT booked_count_within_capacity CHECK (booked_count >= 0 AND booked_count <= capacity),
	CONSTRAINT unique_activity_timeslot UNIQUE (activity_id, start_time)
);

CREATE INDEX IF NOT EXISTS idx_time_slots_activity_start ON time_slots(activity_id, start_time);
CREATE INDEX IF NOT EXISTS idx_time_slots_start_available ON time_slots(start_time, is_available);

CREATE TABLE IF NOT EXISTS bookings (
	id UUID PRIMARY KEY,
	user_phone VARCHAR(50) NOT NULL,
	activity_id UUID NOT NULL REFERENCES activities(id),
	time_slot_id UUID NOT NULL REFERENCES time_slots(id),
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	participants INTEGER NOT NULL CHECK (participants > 0),
	special_requests TEXT NOT NULL DEFAULT '',
	total_price NUMERIC(10,2) NOT NULL,
	currency VARCHAR(3) NOT NULL DEFAULT 'USD',
	source VARCHAR(20) NOT NULL DEFAULT 'whatsapp',
	cancellation_reason TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	confirmed_at TIMESTAMPTZ,
	cancelled_at TIMESTAMPTZ,
	expires_at TIMESTAMPTZ,
	reminder_24h_sent_at TIMESTAMPTZ,
	reminder_1h_sent_at TIMESTAMPTZ,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_bookings_user_phone ON bookings(user_phone, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_bookings_status_slot ON bookings(status, time_slot_id);
CREATE INDEX IF NOT EXISTS idx_bookings_expires_status ON bookings(expires_at, status);
`

// Migrate applies the schema. Statements are idempotent so running on
// every start is safe.
func Migrate(db *sqlx.DB) error {
	_, err := db.Exec(schemaSQL)
	return err
}
