package rod

// TestHTML templates for testing
const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	FormHTML = `<!DOCTYPE html>
<html>
<body>
	<form id="testForm" onsubmit="return false">
		<input name="email" type="text" value="old@example.com" />
		<input name="password" type="password" />
		<select name="integrationType">
			<option value="">--</option>
			<option value="REST">REST API</option>
			<option value="MCP">Model Context Protocol</option>
		</select>
		<button type="submit">Submit</button>
	</form>
	<div id="changes"></div>
	<script>
		document.querySelector('[name="integrationType"]').addEventListener('change', function(e) {
			document.getElementById('changes').textContent = 'changed:' + e.target.value;
		});
	</script>
</body>
</html>`

	InteractiveHTML = `<!DOCTYPE html>
<html>
<body>
	<button id="btn">Click Me</button>
	<div id="result"></div>
	<script>
		document.getElementById('btn').addEventListener('click', function() {
			document.getElementById('result').textContent = 'Clicked!';
		});
	</script>
</body>
</html>`

	TableHTML = `<!DOCTYPE html>
<html>
<body>
	<table id="tools-table">
		<tbody>
			<tr><td>Echo</td><td><button onclick="this.closest('tr').dataset.hit='delete'">Delete</button></td></tr>
			<tr><td>Echo Twice</td><td><button>Delete</button></td></tr>
			<tr><td>Sleep</td><td><button>Delete</button></td></tr>
		</tbody>
	</table>
</body>
</html>`

	ModalHTML = `<!DOCTYPE html>
<html>
<body>
	<button id="open">Open</button>
	<div id="modal" style="display:none"><button id="close">Close</button></div>
	<div class="later"></div>
	<script>
		document.getElementById('open').addEventListener('click', function() {
			setTimeout(function() { document.getElementById('modal').style.display = 'block'; }, 200);
		});
		document.getElementById('close').addEventListener('click', function() {
			setTimeout(function() { document.getElementById('modal').style.display = 'none'; }, 200);
		});
	</script>
</body>
</html>`
)
