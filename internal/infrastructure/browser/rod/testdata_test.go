package rod

// Pages served to browser-backed tests.
const (
	BlankHTML = `<!DOCTYPE html>
<html><head><title>Blank</title></head><body></body></html>`

	ClickTargetHTML = `<!DOCTYPE html>
<html>
<body style="margin:0">
	<button id="btn" style="position:absolute;left:100px;top:100px;width:200px;height:50px">Submit</button>
	<div id="result"></div>
	<div id="hover"></div>
	<script>
		document.getElementById('btn').addEventListener('click', function() {
			document.getElementById('result').textContent = 'clicked';
		});
		document.getElementById('btn').addEventListener('mouseenter', function() {
			document.getElementById('hover').textContent = 'hovered';
		});
	</script>
</body>
</html>`

	ControlsHTML = `<!DOCTYPE html>
<html>
<body style="margin:0">
	<button id="submit" style="position:absolute;left:100px;top:100px;width:200px;height:50px">Submit</button>
	<button id="menu" aria-label="Menu" style="position:absolute;left:500px;top:100px;width:40px;height:40px"></button>
	<input id="email" placeholder="Enter your email" style="position:absolute;left:100px;top:200px;width:300px;height:40px" />
	<a href="/next" style="position:absolute;left:100px;top:300px">Next page</a>
	<button id="hidden" style="display:none">Hidden</button>
	<button id="off" disabled style="position:absolute;left:100px;top:400px;width:200px;height:50px">Disabled</button>
</body>
</html>`

	WidePageHTML = `<!DOCTYPE html>
<html><body style="margin:0;width:3000px;height:200px;background:#ccc"></body></html>`
)
