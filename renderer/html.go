package renderer

import "fmt"

// documentShell wraps SVG markup in a minimal HTML document: no margins,
// transparent background, content centered and constrained to the viewport so
// the measured bounding box reflects what the viewport will be sized to.
const documentShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
html, body {
  margin: 0;
  padding: 0;
  background: transparent;
}
body {
  display: flex;
  align-items: center;
  justify-content: center;
  min-height: 100vh;
}
svg {
  display: block;
  max-width: 100vw;
  max-height: 100vh;
}
</style>
</head>
<body>%s</body>
</html>`

// documentFor builds the HTML shell around the supplied SVG markup.
func documentFor(svg string) string {
	return fmt.Sprintf(documentShell, svg)
}

// measureScript reads the bounding box of the first SVG element in the
// document, or yields null when none exists.
const measureScript = `(() => {
  const el = document.querySelector("svg");
  if (!el) {
    return null;
  }
  const box = el.getBoundingClientRect();
  return { width: box.width, height: box.height };
})()`
