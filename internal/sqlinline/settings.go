package sqlinline

const QSelectAccessSettings = `--sql 5a3fa2fb-f550-4d0a-a6e2-62380c99f085
select document
from access_settings
where id = 'default'
limit 1;
`

const QUpsertAccessSettings = `--sql 5938254e-e400-451a-9ba8-f32d24e8974e
insert into access_settings (id, document, updated_at)
values ('default', $1::jsonb, now())
on conflict (id) do update set
    document = excluded.document,
    updated_at = now();
`
