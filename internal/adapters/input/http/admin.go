package http

const adminPage = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>GaggiMate Card Settings</title>
    <style>
        body { font-family: sans-serif; max-width: 640px; margin: 40px auto; background-color: #f4f4f9; }
        .container { background: white; padding: 30px; border-radius: 10px; box-shadow: 0 0 10px rgba(0,0,0,0.1); }
        label { display: block; margin-top: 15px; font-weight: bold; }
        label.inline { font-weight: normal; }
        input[type=text], select { width: 100%; padding: 8px; margin-top: 5px; box-sizing: border-box; }
        #status { margin-top: 20px; padding: 10px; border-radius: 5px; display: none; }
        .success { background-color: #d4edda; color: #155724; }
        .error { background-color: #f8d7da; color: #721c24; }
    </style>
</head>
<body>
<div class="container">
    <h1>GaggiMate Card</h1>

    <label for="device_id">Device</label>
    <select id="device_id" onchange="update('device_id', this.value)"></select>

    <label for="entity">Entity (alternative)</label>
    <select id="entity" onchange="update('entity', this.value)"></select>

    <label for="name">Name</label>
    <input type="text" id="name" onchange="update('name', this.value)">

    <label class="inline"><input type="checkbox" id="show_profile" onchange="update('show_profile', this.checked)"> Show profile</label>
    <label class="inline"><input type="checkbox" id="show_weight" onchange="update('show_weight', this.checked)"> Show weight</label>
    <label class="inline"><input type="checkbox" id="show_controls" onchange="update('show_controls', this.checked)"> Show controls</label>

    <p><a href="/">Open card</a></p>
    <div id="status"></div>
</div>
<script>
    let config = {};

    function fillSelect(id, items, selected) {
        const sel = document.getElementById(id);
        sel.innerHTML = '<option value="">-- None --</option>';
        items.forEach(it => {
            const opt = document.createElement('option');
            opt.value = it.value;
            opt.textContent = it.label;
            sel.appendChild(opt);
        });
        if (selected && !items.find(it => it.value === selected)) {
            const opt = document.createElement('option');
            opt.value = selected;
            opt.textContent = selected + ' (unreachable)';
            sel.appendChild(opt);
        }
        sel.value = selected || '';
    }

    async function load() {
        config = await (await fetch('/admin/config')).json();
        document.getElementById('name').value = config.name || '';
        ['show_profile', 'show_weight', 'show_controls'].forEach(k => {
            document.getElementById(k).checked = config[k] !== false;
        });

        const devices = await (await fetch('/admin/devices')).json();
        fillSelect('device_id', devices.map(d => ({ value: d.id, label: d.name_by_user || d.name || d.id })), config.device_id);

        const entities = await (await fetch('/admin/entities')).json();
        fillSelect('entity', entities.map(e => ({ value: e, label: e })), config.entity);
    }

    async function update(field, value) {
        const res = await fetch('/admin/config/' + field, {
            method: 'PATCH',
            headers: { 'Content-Type': 'application/json' },
            body: JSON.stringify({ value: value })
        });
        if (res.ok) {
            config = await res.json();
            showStatus('Saved');
        } else {
            const err = await res.json();
            showStatus('Error: ' + err.message);
        }
    }

    function showStatus(msg) {
        const s = document.getElementById('status');
        s.textContent = msg;
        s.style.display = 'block';
        s.className = msg.startsWith('Error') ? 'error' : 'success';
        setTimeout(() => { s.style.display = 'none'; }, 3000);
    }

    load();
</script>
</body>
</html>
`
