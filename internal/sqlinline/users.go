package sqlinline

const QInsertUser = `--sql 1be5d462-6139-43c7-9b84-5394b97ea73c
insert into users (id, email, name, password_hash, google_sub, locale, role, plan, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::text, nullif($5::text, ''), $6::text, $7::text, $8::text, now(), now());
`

const QSelectUserByID = `--sql 8249c898-70d5-42da-8058-706f5bcad099
select id, email, name, coalesce(password_hash, ''), coalesce(google_sub, ''), locale, role, plan, created_at, updated_at
from users
where id = $1::uuid
limit 1;
`

const QSelectUserByEmail = `--sql 4b27dd49-30e0-4c0c-bc01-f89b35b6babe
select id, email, name, coalesce(password_hash, ''), coalesce(google_sub, ''), locale, role, plan, created_at, updated_at
from users
where lower(email) = lower($1::text)
limit 1;
`

const QUpsertGoogleUser = `--sql 95fb7f7a-09ab-4e0a-ae21-deb3871def41
insert into users (id, email, name, google_sub, locale, role, plan, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, 'user', 'free', now(), now())
on conflict (email) do update set
    name = excluded.name,
    google_sub = excluded.google_sub,
    locale = excluded.locale,
    updated_at = now()
returning id, email, name, coalesce(password_hash, ''), coalesce(google_sub, ''), locale, role, plan, created_at, updated_at;
`

const QUpdateUserPlan = `--sql a516069d-be1a-47fb-a2b5-327e3aeb789a
update users
set plan = $2::text, updated_at = now()
where id = $1::uuid;
`
