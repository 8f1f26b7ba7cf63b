package sqlinline

const QInsertSubscription = `--sql a088e7b2-e023-4d6a-8b07-669378ab36e5
insert into subscriptions (id, user_id, plan, status, payment_ref, amount_sar, created_at, updated_at)
values ($1::uuid, $2::uuid, $3::text, $4::text, $5::text, $6::bigint, now(), now());
`

const QSelectSubscriptionByPaymentRef = `--sql 3fec84ad-f6b0-4e92-b6cf-3289247f4dcb
select id, user_id, plan, status, payment_ref, amount_sar, starts_at, expires_at, created_at, updated_at
from subscriptions
where payment_ref = $1::text
limit 1;
`

const QActivateSubscription = `--sql 763facbe-a183-474a-a486-d9e38b978a17
update subscriptions
set status = 'active', starts_at = $2::timestamptz, expires_at = $3::timestamptz, updated_at = now()
where id = $1::uuid
returning id, user_id, plan, status, payment_ref, amount_sar, starts_at, expires_at, created_at, updated_at;
`

const QSelectActiveSubscription = `--sql 76d6fa22-847f-44fd-b39b-bee94902802a
select id, user_id, plan, status, payment_ref, amount_sar, starts_at, expires_at, created_at, updated_at
from subscriptions
where user_id = $1::uuid
  and status = 'active'
  and (expires_at is null or expires_at > now())
order by created_at desc
limit 1;
`

const QExpireLapsedSubscriptions = `--sql 7be1fb44-e5f0-42c6-9185-75cb1f5f864b
update subscriptions
set status = 'expired', updated_at = now()
where status = 'active'
  and expires_at is not null
  and expires_at <= $1::timestamptz;
`

const QDowngradeExpiredUsers = `--sql e666dc6d-2ad0-4b26-a764-8439a0dc3893
update users u
set plan = 'free', updated_at = now()
where u.plan = 'premium'
  and not exists (
      select 1
      from subscriptions s
      where s.user_id = u.id
        and s.status = 'active'
        and (s.expires_at is null or s.expires_at > now())
  );
`
