package segmentation

import (
	"strings"
	"testing"

	"javasegment/internal/domain/valueobject"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classNames(spans []valueobject.ClassSpan) []string {
	names := make([]string, 0, len(spans))
	for _, s := range spans {
		names = append(names, s.ClassName)
	}
	return names
}

func methodNames(spans []valueobject.MethodSpan) []string {
	names := make([]string, 0, len(spans))
	for _, s := range spans {
		names = append(names, s.MethodName)
	}
	return names
}

func methodsOf(t *testing.T, source string) []valueobject.MethodSpan {
	t.Helper()
	classes := SelectClasses(source)
	require.NotEmpty(t, classes)
	return ExtractMethods(source, classes[0])
}

func TestExtractClasses(t *testing.T) {
	source := "class Helper {\n}\npublic class Main {\n  void run() {}\n}\n"

	t.Run("strict pass keeps public types", func(t *testing.T) {
		spans := ExtractClasses(source, true)

		assert.Equal(t, []string{"Main"}, classNames(spans))
		assert.Equal(t, byte('{'), source[spans[0].BodyStart-1])
		assert.Equal(t, byte('}'), source[spans[0].BodyEnd])
	})

	t.Run("permissive pass keeps everything in order", func(t *testing.T) {
		spans := ExtractClasses(source, false)

		assert.Equal(t, []string{"Helper", "Main"}, classNames(spans))
		assert.Less(t, spans[0].BodyEnd, spans[1].BodyStart)
	})

	t.Run("interfaces and enums", func(t *testing.T) {
		spans := ExtractClasses("class A {} interface B {} enum C { X }", false)
		assert.Equal(t, []string{"A", "B", "C"}, classNames(spans))
	})

	t.Run("modifiers and type parameters", func(t *testing.T) {
		src := "public abstract class Repo<T extends Comparable<T>> extends Base implements Api {\n}"
		assert.Equal(t, []string{"Repo"}, classNames(ExtractClasses(src, true)))
	})

	t.Run("nested public type is not top level", func(t *testing.T) {
		src := "class Outer {\n  public class Inner {\n  }\n}"
		assert.Empty(t, ExtractClasses(src, true))
		assert.Equal(t, []string{"Outer"}, classNames(ExtractClasses(src, false)))
	})

	t.Run("unmatched class brace", func(t *testing.T) {
		assert.Empty(t, ExtractClasses("public class A {\n void m() {}", true))
	})

	t.Run("annotation braces before declaration", func(t *testing.T) {
		src := "@Ann({1, 2})\npublic class A {\n}"
		assert.Equal(t, []string{"A"}, classNames(ExtractClasses(src, true)))
	})

	t.Run("class literal is not a declaration", func(t *testing.T) {
		src := "@RunWith(Suite.class)\nclass T {\n}"
		assert.Equal(t, []string{"T"}, classNames(ExtractClasses(src, false)))
	})
}

func TestSelectClasses(t *testing.T) {
	t.Run("prefers public types", func(t *testing.T) {
		src := "class Helper {}\npublic class Main {}\nclass Other {}"
		assert.Equal(t, []string{"Main"}, classNames(SelectClasses(src)))
	})

	t.Run("falls back to all types", func(t *testing.T) {
		src := "class Helper {}\nclass Other {}"
		assert.Equal(t, []string{"Helper", "Other"}, classNames(SelectClasses(src)))
	})

	t.Run("nothing found", func(t *testing.T) {
		assert.Empty(t, SelectClasses("int x = 1;"))
	})

	t.Run("string brace does not end class", func(t *testing.T) {
		src := "public class A { String s = \"}\"; void m() {} }"
		spans := SelectClasses(src)

		require.Len(t, spans, 1)
		assert.Equal(t, len(src)-1, spans[0].BodyEnd)
	})
}

func TestFirstNonEmpty(t *testing.T) {
	calls := 0
	strict := func() []valueobject.ClassSpan {
		calls++
		return []valueobject.ClassSpan{{ClassName: "A"}}
	}
	permissive := func() []valueobject.ClassSpan {
		calls++
		return []valueobject.ClassSpan{{ClassName: "B"}}
	}

	assert.Equal(t, []string{"A"}, classNames(firstNonEmpty(strict, permissive)))
	assert.Equal(t, 1, calls)

	empty := func() []valueobject.ClassSpan { return nil }
	assert.Equal(t, []string{"B"}, classNames(firstNonEmpty(empty, permissive)))
	assert.Nil(t, firstNonEmpty(empty, empty))
}

func TestExtractMethods(t *testing.T) {
	t.Run("block and signature", func(t *testing.T) {
		methods := methodsOf(t, "public class A { void m(){ if(true){x();} } }")

		require.Len(t, methods, 1)
		assert.Equal(t, "m", methods[0].MethodName)
		assert.Equal(t, "void m(){ if(true){x();} }", methods[0].Block)
		assert.Equal(t, "void m()", methods[0].Signature)
	})

	t.Run("offsets are absolute", func(t *testing.T) {
		src := "public class A {\n  int one() { return 1; }\n  int two() { return 2; }\n}"
		methods := methodsOf(t, src)

		require.Len(t, methods, 2)
		for _, m := range methods {
			assert.Equal(t, m.Block, src[m.StartIndex:m.EndIndex+1])
			assert.Equal(t, byte('}'), src[m.EndIndex])
		}
		assert.Equal(t, []string{"one", "two"}, methodNames(methods))
	})

	t.Run("signature whitespace is normalized", func(t *testing.T) {
		src := "public class A {\n  public static   int\n  add (int a,\n int b) throws IllegalStateException {\n return a + b;\n }\n}"
		methods := methodsOf(t, src)

		require.Len(t, methods, 1)
		assert.Equal(t, "public static int add(int a, int b) throws IllegalStateException", methods[0].Signature)
		assert.True(t, strings.HasPrefix(methods[0].Block, "public static   int"))
	})

	t.Run("constructors", func(t *testing.T) {
		methods := methodsOf(t, "public class A {\n  A() {}\n  public A(int x) {}\n}")
		assert.Equal(t, []string{"A", "A"}, methodNames(methods))
	})

	t.Run("generic method", func(t *testing.T) {
		src := "public class A {\n  public <T extends Comparable<T>> List<T> sort(List<T> in) {\n    return in;\n  }\n}"
		methods := methodsOf(t, src)

		require.Len(t, methods, 1)
		assert.Equal(t, "sort", methods[0].MethodName)
		assert.Equal(t, "public <T extends Comparable<T>> List<T> sort(List<T> in)", methods[0].Signature)
	})

	t.Run("annotation is outside the block", func(t *testing.T) {
		src := "public class A {\n  @Override\n  public String toString() {\n    return \"A\";\n  }\n}"
		methods := methodsOf(t, src)

		require.Len(t, methods, 1)
		assert.True(t, strings.HasPrefix(methods[0].Block, "public String toString()"))
	})

	t.Run("nested annotation arguments skip the method", func(t *testing.T) {
		src := "public class A {\n  @Foo(a = @Bar(1)) public void m() {\n  }\n  @Baz(\"x\") void n() {}\n}"
		assert.Equal(t, []string{"n"}, methodNames(methodsOf(t, src)))
	})

	t.Run("nested types are skipped", func(t *testing.T) {
		src := "public class A {\n  static class Inner {\n    void hidden() {}\n  }\n  record P(int x) {}\n  interface Cb {\n    default void cb() {}\n  }\n  void visible() {}\n}"
		assert.Equal(t, []string{"visible"}, methodNames(methodsOf(t, src)))
	})

	t.Run("initializers and anonymous bodies are skipped", func(t *testing.T) {
		src := "public class A {\n  static {\n    init();\n  }\n  Runnable r = new Runnable() {\n    public void run() {}\n  };\n  int[] xs = new int[]{1, 2};\n  void v() {}\n}"
		assert.Equal(t, []string{"v"}, methodNames(methodsOf(t, src)))
	})

	t.Run("enum constant bodies are skipped", func(t *testing.T) {
		src := "public enum Op {\n  PLUS(\"+\") {\n    void x() {}\n  },\n  MINUS(\"-\");\n  Op(String s) {}\n  int code() { return 1; }\n}"
		assert.Equal(t, []string{"Op", "code"}, methodNames(methodsOf(t, src)))
	})

	t.Run("interface default methods", func(t *testing.T) {
		src := "public interface Greeter {\n  void greet();\n  default String name() {\n    return \"x\";\n  }\n}"
		assert.Equal(t, []string{"name"}, methodNames(methodsOf(t, src)))
	})

	t.Run("braces inside literals", func(t *testing.T) {
		src := "public class A {\n  String s = \"{\";\n  void m() {\n    String t = \"}\";\n    char c = '{';\n  }\n  void n() {}\n}"
		methods := methodsOf(t, src)

		require.Equal(t, []string{"m", "n"}, methodNames(methods))
		assert.True(t, strings.HasSuffix(methods[0].Block, "char c = '{';\n  }"))
	})

	t.Run("unmatched method brace yields nothing", func(t *testing.T) {
		src := "public class A {\n  void m() {\n  if (x) {\n"
		span := valueobject.ClassSpan{ClassName: "A", BodyStart: 16, BodyEnd: len(src)}
		assert.Empty(t, ExtractMethods(src, span))
	})

	t.Run("invalid span", func(t *testing.T) {
		src := "public class A { void m() {} }"
		assert.Empty(t, ExtractMethods(src, valueobject.ClassSpan{BodyStart: 10, BodyEnd: 5}))
		assert.Empty(t, ExtractMethods(src, valueobject.ClassSpan{BodyStart: 0, BodyEnd: 500}))
	})
}

func TestCleanSignature(t *testing.T) {
	assert.Equal(t, "int f(int a)", cleanSignature("  int\n\tf  (int a)  "))
	assert.Equal(t, "", cleanSignature(""))
}
