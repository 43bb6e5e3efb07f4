package database

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	username TEXT NOT NULL,
	email TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT '/static/images/default-pic.png',
	header_image_url TEXT NOT NULL DEFAULT '/static/images/warbler-hero.jpg',
	bio TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT users_username_key UNIQUE (username),
	CONSTRAINT users_email_key UNIQUE (email)
);

CREATE TABLE IF NOT EXISTS messages (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	text VARCHAR(140) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

-- Timeline reads filter by an IN-set of author ids and sort by recency;
-- this index keeps that a single indexed scan.
CREATE INDEX IF NOT EXISTS messages_user_id_created_at_idx
	ON messages (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS follows (
	follower_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	followee_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (follower_id, followee_id),
	CONSTRAINT follows_no_self_follow CHECK (follower_id <> followee_id)
);

CREATE INDEX IF NOT EXISTS follows_followee_id_idx ON follows (followee_id);

CREATE TABLE IF NOT EXISTS likes (
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	message_id BIGINT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, message_id)
);

CREATE INDEX IF NOT EXISTS likes_message_id_idx ON likes (message_id);
`
