package sqlinline

const QSelectIntegrationToken = `--sql 2af25e33-f6f5-4ed3-a80b-f63d9c16f65d
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql 1550d263-effe-4391-a4d3-c493eb4908e0
insert into integration_tokens (provider, token, properties, created_at, updated_at)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
