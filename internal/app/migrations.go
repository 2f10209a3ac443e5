package app

import "serotonyl.ru/catch-bot/internal/db/postgres"

// SQL-миграции встроены в код для упрощения деплоя.
var migrations = []postgres.Migration{
	{Version: 1, SQL: migration001Catalog},
	{Version: 2, SQL: migration002Users},
	{Version: 3, SQL: migration003Stats},
	{Version: 4, SQL: migration004Settings},
	{Version: 5, SQL: migration005Shop},
	{Version: 6, SQL: migration006Admin},
	{Version: 7, SQL: migration007FindOwners},
}

var migration001Catalog = `
CREATE TABLE IF NOT EXISTS characters (
    id VARCHAR(32) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    anime VARCHAR(255) NOT NULL,
    rarity VARCHAR(64) NOT NULL,
    img_url TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_characters_rarity ON characters(rarity);
`

var migration002Users = `
CREATE TABLE IF NOT EXISTS users (
    id BIGINT PRIMARY KEY,
    username VARCHAR(255) NOT NULL DEFAULT '',
    first_name VARCHAR(255) NOT NULL DEFAULT '',
    wallet BIGINT NOT NULL DEFAULT 0 CHECK (wallet >= 0),
    favorite_id VARCHAR(32) NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS user_characters (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    character_id VARCHAR(32) NOT NULL,
    name VARCHAR(255) NOT NULL,
    anime VARCHAR(255) NOT NULL,
    rarity VARCHAR(64) NOT NULL,
    img_url TEXT NOT NULL DEFAULT '',
    acquired_via VARCHAR(32) NOT NULL,
    acquired_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_user_characters_user ON user_characters(user_id, character_id);
CREATE TABLE IF NOT EXISTS wallet_transactions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    amount BIGINT NOT NULL,
    kind VARCHAR(32) NOT NULL,
    reference VARCHAR(64),
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_wallet_transactions_user ON wallet_transactions(user_id, created_at DESC);
`

var migration003Stats = `
CREATE TABLE IF NOT EXISTS group_user_totals (
    chat_id BIGINT NOT NULL,
    user_id BIGINT NOT NULL,
    username VARCHAR(255) NOT NULL DEFAULT '',
    first_name VARCHAR(255) NOT NULL DEFAULT '',
    count BIGINT NOT NULL DEFAULT 0,
    PRIMARY KEY (chat_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_group_user_totals_top ON group_user_totals(chat_id, count DESC);
CREATE TABLE IF NOT EXISTS user_totals (
    user_id BIGINT PRIMARY KEY,
    count BIGINT NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS group_totals (
    chat_id BIGINT PRIMARY KEY,
    title VARCHAR(255) NOT NULL DEFAULT '',
    count BIGINT NOT NULL DEFAULT 0
);
`

var migration004Settings = `
CREATE TABLE IF NOT EXISTS catch_settings (
    id SMALLINT PRIMARY KEY CHECK (id = 1),
    frequency INTEGER NOT NULL,
    include_stickers BOOLEAN NOT NULL DEFAULT FALSE,
    include_commands BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS chat_settings (
    chat_id BIGINT PRIMARY KEY,
    frequency INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS shop_settings (
    id SMALLINT PRIMARY KEY CHECK (id = 1),
    enabled BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS shop_rarities (
    rarity VARCHAR(64) PRIMARY KEY,
    amount INTEGER NOT NULL CHECK (amount >= 0)
);
`

var migration005Shop = `
CREATE TABLE IF NOT EXISTS shop_listings (
    id VARCHAR(16) PRIMARY KEY,
    cycle_id VARCHAR(36) NOT NULL,
    character_id VARCHAR(32) NOT NULL,
    name VARCHAR(255) NOT NULL,
    anime VARCHAR(255) NOT NULL,
    rarity VARCHAR(64) NOT NULL,
    img_url TEXT NOT NULL DEFAULT '',
    price BIGINT NOT NULL CHECK (price > 0),
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
`

var migration006Admin = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    session_token VARCHAR(255) UNIQUE,
    authenticated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMP NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_admin_sessions_user_id ON admin_sessions(user_id);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    attempt_time TIMESTAMP NOT NULL DEFAULT NOW(),
    success BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_admin_login_attempts_user ON admin_login_attempts(user_id, attempt_time);
`

var migration007FindOwners = `
CREATE INDEX IF NOT EXISTS idx_user_characters_name ON user_characters (LOWER(name));
`
