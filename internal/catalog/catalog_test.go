package catalog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/apicover/internal/model"
)

const sampleAPI = `<?xml version="1.0" encoding="UTF-8"?>
<api name='libvirt'>
  <files>
    <file name='libvirt-host'>
      <exports symbol='virConnectOpen' type='function'/>
    </file>
  </files>
  <symbols>
    <macro name='LIBVIR_VERSION_NUMBER' file='libvirt-common'>
      <info><![CDATA[the version of the libvirt library]]></info>
    </macro>
    <enum name='VIR_DOMAIN_RUNNING' file='libvirt-domain' value='1' type='virDomainState'/>
    <function name='virConnectOpen' file='libvirt-host' module='libvirt-host'>
      <info><![CDATA[This function should be called first]]></info>
      <return type='virConnectPtr' info='a pointer to the hypervisor connection'/>
      <arg name='name' type='const char *' info='URI of the hypervisor'/>
    </function>
    <function name='virConnectClose' file='libvirt-host' module='libvirt-host'/>
    <function name='virDomainCreate' file='libvirt-domain' module='libvirt-domain'/>
  </symbols>
</api>
`

func TestParse(t *testing.T) {
	t.Parallel()

	cat, err := Parse(strings.NewReader(sampleAPI))
	require.NoError(t, err)

	require.Len(t, cat.Functions, 3)
	assert.Equal(t, "virConnectOpen", cat.Functions[0].Name)
	assert.Equal(t, model.Function, cat.Functions[0].Kind)
	assert.Equal(t, []model.Attr{
		{Key: "name", Value: "virConnectOpen"},
		{Key: "file", Value: "libvirt-host"},
		{Key: "module", Value: "libvirt-host"},
	}, cat.Functions[0].Attrs)

	// <arg name=...> children are not functions.
	names := make([]string, len(cat.Functions))
	for i, f := range cat.Functions {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"virConnectOpen", "virConnectClose", "virDomainCreate"}, names)

	require.Len(t, cat.Macros, 1)
	assert.Equal(t, "LIBVIR_VERSION_NUMBER", cat.Macros[0].Name)
	require.Len(t, cat.Enums, 1)
	v, ok := cat.Enums[0].Attr("value")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", "empty document"},
		{"unclosed", "<api><symbols>", "EOF"},
		{"mismatched", "<api><symbols></api>", "element"},
		{"nameless function", "<api><function file='x'/></api>", "without a name"},
		{"second root", "<api><function name='a'/></api><api><function name='b'/></api>", "junk after document element"},
		{"trailing text", "<api><function name='a'/></api>junk", "outside the document element"},
		{"leading text", "junk<api/>", "outside the document element"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(strings.NewReader(tc.doc))
			require.Error(t, err)
			var le *LoadError
			require.True(t, errors.As(err, &le), "want *LoadError, got %T", err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "libvirt-api.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleAPI), 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cat.Functions, 3)
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nope.xml")
	_, err := Load(path)
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, path, le.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadMalformedCarriesPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.xml")
	require.NoError(t, os.WriteFile(path, []byte("<api><function name='a'>"), 0o644))

	_, err := Load(path)
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, path, le.Path)
	assert.Contains(t, err.Error(), path)
}

func TestFilterPrefix(t *testing.T) {
	t.Parallel()

	syms := []model.Symbol{
		{Name: "virConnectOpen"},
		{Name: "virConnectClose"},
		{Name: "virDomainCreate"},
	}

	assert.Len(t, FilterPrefix(syms, ""), 3)

	got := FilterPrefix(syms, "virDomain")
	require.Len(t, got, 1)
	assert.Equal(t, "virDomainCreate", got[0].Name)

	assert.Empty(t, FilterPrefix(syms, "virStream"))
}

func TestParseTrailingWhitespaceAndComments(t *testing.T) {
	t.Parallel()

	cat, err := Parse(strings.NewReader("<api><function name='a'/></api>\n<!-- generated -->\n"))
	require.NoError(t, err)
	assert.Len(t, cat.Functions, 1)
}

func TestParseNamespacedAttr(t *testing.T) {
	t.Parallel()

	doc := `<api xmlns:x="urn:example"><function name='virFoo' x:since='1.0'/></api>`
	cat, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, cat.Functions, 1)

	v, ok := cat.Functions[0].Attr("{urn:example}since")
	assert.True(t, ok)
	assert.Equal(t, "1.0", v)
}

func writeCatalog(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("<api><symbols>"+body+"</symbols></api>"), 0o644))
	return path
}

func TestLoadAllMerges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := writeCatalog(t, dir, "libvirt-api.xml",
		"<function name='virConnectOpen'/><enum name='VIR_ERR_OK'/>")
	qemu := writeCatalog(t, dir, "libvirt-qemu-api.xml",
		"<function name='virDomainQemuMonitorCommand'/><function name='virConnectOpen' file='dup'/><macro name='VIR_QEMU_X'/>")

	cat, err := LoadAll([]string{base, qemu})
	require.NoError(t, err)

	require.Len(t, cat.Functions, 2)
	assert.Equal(t, "virConnectOpen", cat.Functions[0].Name)
	_, fromQemu := cat.Functions[0].Attr("file")
	assert.False(t, fromQemu, "first definition wins")
	assert.Equal(t, "virDomainQemuMonitorCommand", cat.Functions[1].Name)
	assert.Len(t, cat.Macros, 1)
	assert.Len(t, cat.Enums, 1)
}

func TestLoadAllFailsOnAnyCatalog(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeCatalog(t, dir, "a.xml", "<function name='a'/>")

	_, err := LoadAll([]string{good, filepath.Join(dir, "absent.xml")})
	var le *LoadError
	require.True(t, errors.As(err, &le))

	_, err = LoadAll(nil)
	require.Error(t, err)
}

func TestParseKinds(t *testing.T) {
	t.Parallel()

	got, err := ParseKinds(nil)
	require.NoError(t, err)
	assert.Equal(t, []model.SymbolKind{model.Function}, got)

	got, err = ParseKinds([]string{"enum", " macro", "enum"})
	require.NoError(t, err)
	assert.Equal(t, []model.SymbolKind{model.Enum, model.Macro}, got)

	_, err = ParseKinds([]string{"typedef"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "typedef")
}

func TestSelect(t *testing.T) {
	t.Parallel()

	cat := &model.Catalog{
		Functions: []model.Symbol{{Kind: model.Function, Name: "virConnectOpen"}},
		Macros:    []model.Symbol{{Kind: model.Macro, Name: "VIR_UUID_BUFLEN"}},
		Enums: []model.Symbol{
			{Kind: model.Enum, Name: "VIR_ERR_OK"},
			{Kind: model.Enum, Name: "VIR_ERR_LAST"},
		},
	}

	assert.Len(t, Select(cat, []model.SymbolKind{model.Function}), 1)

	got := Select(cat, []model.SymbolKind{model.Function, model.Macro, model.Enum})
	names := make([]string, len(got))
	for i, s := range got {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"virConnectOpen", "VIR_UUID_BUFLEN", "VIR_ERR_OK"}, names)
}

func TestExclude(t *testing.T) {
	t.Parallel()

	syms := []model.Symbol{{Name: "virConnectOpen"}, {Name: "virFreeError"}, {Name: "virResetLastError"}}

	assert.Len(t, Exclude(syms, nil), 3)

	got := Exclude(syms, []string{"virFreeError", "virResetLastError", "virNotInCatalog"})
	require.Len(t, got, 1)
	assert.Equal(t, "virConnectOpen", got[0].Name)
}
