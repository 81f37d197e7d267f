package database

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'admin',
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS barbers (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(120) NOT NULL,
		specialty VARCHAR(255) NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS services (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(120) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(10,2) NOT NULL DEFAULT 0,
		duration_minutes INTEGER NOT NULL DEFAULT 30,
		image_url TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(120) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(10,2) NOT NULL DEFAULT 0,
		stock INTEGER,
		image_url TEXT NOT NULL DEFAULT '',
		is_active_page BOOLEAN NOT NULL DEFAULT FALSE,
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS offers (
		id VARCHAR(36) PRIMARY KEY,
		title VARCHAR(160) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(10,2) NOT NULL DEFAULT 0,
		original_price NUMERIC(10,2),
		image_url TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		valid_from {{timestamp}},
		valid_until {{timestamp}},
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS discount_codes (
		id VARCHAR(36) PRIMARY KEY,
		code VARCHAR(50) NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		discount_type VARCHAR(20) NOT NULL,
		discount_value NUMERIC(10,2) NOT NULL,
		min_purchase NUMERIC(10,2) NOT NULL DEFAULT 0,
		max_discount NUMERIC(10,2),
		usage_limit INTEGER,
		usage_count INTEGER NOT NULL DEFAULT 0,
		valid_from {{timestamp}},
		valid_until {{timestamp}},
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id VARCHAR(36) PRIMARY KEY,
		kind VARCHAR(20) NOT NULL DEFAULT 'booking',
		service_id VARCHAR(36) REFERENCES services(id) ON DELETE CASCADE,
		service_label VARCHAR(255) NOT NULL DEFAULT '',
		barber_id VARCHAR(36) REFERENCES barbers(id) ON DELETE CASCADE,
		barber_name VARCHAR(120) NOT NULL DEFAULT '',
		service_price NUMERIC(10,2) NOT NULL DEFAULT 0,
		date VARCHAR(10) NOT NULL,
		time VARCHAR(5) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pendiente',
		customer_name VARCHAR(120) NOT NULL,
		customer_phone VARCHAR(40) NOT NULL,
		delivery_status VARCHAR(20),
		discount_code_id VARCHAR(36),
		discount_amount NUMERIC(10,2) NOT NULL DEFAULT 0,
		total NUMERIC(10,2) NOT NULL DEFAULT 0,
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reservation_items (
		id VARCHAR(36) PRIMARY KEY,
		reservation_id VARCHAR(36) NOT NULL REFERENCES reservations(id) ON DELETE CASCADE,
		item_type VARCHAR(20) NOT NULL,
		item_id VARCHAR(36) NOT NULL,
		item_name VARCHAR(255) NOT NULL,
		quantity INTEGER NOT NULL,
		unit_price NUMERIC(10,2) NOT NULL,
		discount_code_id VARCHAR(36),
		discount_amount NUMERIC(10,2) NOT NULL DEFAULT 0,
		subtotal NUMERIC(10,2) NOT NULL,
		created_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stock_movements (
		id {{autoid}},
		product_id VARCHAR(36) NOT NULL,
		reservation_id VARCHAR(36),
		delta INTEGER NOT NULL,
		stock_before INTEGER NOT NULL,
		stock_after INTEGER NOT NULL,
		reason VARCHAR(20) NOT NULL,
		created_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key VARCHAR(100) PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sync_queue (
		id {{autoid}},
		task_type VARCHAR(30) NOT NULL,
		reservation_id VARCHAR(36) NOT NULL,
		payload TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		retry_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at {{timestamp}} NOT NULL,
		processed_at {{timestamp}},
		next_retry_at {{timestamp}}
	)`,

	`CREATE INDEX IF NOT EXISTS idx_reservations_slot ON reservations(date, time)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_barber ON reservations(barber_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_service ON reservations(service_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reservation_items_reservation ON reservation_items(reservation_id)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_movements_product ON stock_movements(product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status)`,
}
