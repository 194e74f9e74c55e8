package store

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS farms (
    id          BIGSERIAL PRIMARY KEY,
    plant       TEXT NOT NULL DEFAULT '',
    branch      TEXT NOT NULL DEFAULT '',
    house       TEXT NOT NULL DEFAULT '',
    name        TEXT NOT NULL DEFAULT '',
    lat         DOUBLE PRECISION,
    lng         DOUBLE PRECISION,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS factories (
    id          BIGSERIAL PRIMARY KEY,
    site        TEXT NOT NULL UNIQUE,
    name        TEXT NOT NULL DEFAULT '',
    lat         DOUBLE PRECISION,
    lng         DOUBLE PRECISION,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS trucks (
    id          BIGSERIAL PRIMARY KEY,
    plate       TEXT NOT NULL UNIQUE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS users (
    id            BIGSERIAL PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'driver',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS driver_trucks (
    id         BIGSERIAL PRIMARY KEY,
    driver_id  BIGINT NOT NULL REFERENCES users(id),
    truck_id   BIGINT NOT NULL REFERENCES trucks(id),
    status     TEXT NOT NULL DEFAULT 'active'
);
CREATE INDEX IF NOT EXISTS idx_driver_trucks ON driver_trucks(driver_id, status);

CREATE TABLE IF NOT EXISTS user_farms (
    id       BIGSERIAL PRIMARY KEY,
    user_id  BIGINT NOT NULL REFERENCES users(id),
    farm_id  BIGINT NOT NULL REFERENCES farms(id),
    status   TEXT NOT NULL DEFAULT 'active'
);
CREATE INDEX IF NOT EXISTS idx_user_farms ON user_farms(user_id, status);

CREATE TABLE IF NOT EXISTS user_sites (
    id       BIGSERIAL PRIMARY KEY,
    user_id  BIGINT NOT NULL REFERENCES users(id),
    site     TEXT NOT NULL,
    status   TEXT NOT NULL DEFAULT 'active'
);
CREATE INDEX IF NOT EXISTS idx_user_sites ON user_sites(user_id, status);

CREATE TABLE IF NOT EXISTS delivery_plans (
    id            BIGSERIAL PRIMARY KEY,
    plan_uid      TEXT NOT NULL UNIQUE,
    delivery_date TEXT NOT NULL,
    delivery_time TEXT NOT NULL DEFAULT '',
    farm_id       BIGINT REFERENCES farms(id),
    farm_name     TEXT NOT NULL DEFAULT '',
    factory_site  TEXT NOT NULL DEFAULT '',
    plate         TEXT NOT NULL DEFAULT '',
    quantity      INTEGER NOT NULL DEFAULT 0,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_plans_date ON delivery_plans(delivery_date);
CREATE INDEX IF NOT EXISTS idx_plans_site ON delivery_plans(factory_site, delivery_date);
CREATE INDEX IF NOT EXISTS idx_plans_plate ON delivery_plans(plate, delivery_date);

CREATE TABLE IF NOT EXISTS trip_sessions (
    id                     BIGSERIAL PRIMARY KEY,
    session_uuid           TEXT NOT NULL UNIQUE,
    plan_id                BIGINT NOT NULL REFERENCES delivery_plans(id),
    driver_id              BIGINT NOT NULL REFERENCES users(id),
    truck_id               BIGINT NOT NULL REFERENCES trucks(id),
    arrived_origin_at      TIMESTAMPTZ,
    departed_origin_at     TIMESTAMPTZ,
    arrived_destination_at TIMESTAMPTZ,
    completed              BOOLEAN NOT NULL DEFAULT FALSE,
    created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_active
    ON trip_sessions(plan_id, driver_id) WHERE arrived_destination_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_sessions_plan ON trip_sessions(plan_id, created_at DESC);

CREATE TABLE IF NOT EXISTS position_samples (
    id          BIGSERIAL PRIMARY KEY,
    session_id  BIGINT NOT NULL REFERENCES trip_sessions(id),
    lat         DOUBLE PRECISION NOT NULL,
    lng         DOUBLE PRECISION NOT NULL,
    heading     DOUBLE PRECISION,
    speed_kmh   DOUBLE PRECISION,
    recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_samples_session ON position_samples(session_id, recorded_at DESC);

CREATE TABLE IF NOT EXISTS factory_receipts (
    id           BIGSERIAL PRIMARY KEY,
    plan_id      BIGINT NOT NULL UNIQUE REFERENCES delivery_plans(id),
    factory_id   BIGINT REFERENCES factories(id),
    confirmed_by BIGINT REFERENCES users(id),
    pig_count    INTEGER NOT NULL DEFAULT 0,
    received_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS outbox (
    id          BIGSERIAL PRIMARY KEY,
    topic       TEXT NOT NULL,
    payload     BYTEA NOT NULL,
    msg_type    TEXT NOT NULL DEFAULT '',
    station_id  TEXT NOT NULL DEFAULT '',
    retries     INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    sent_at     TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at) WHERE sent_at IS NULL;
`
