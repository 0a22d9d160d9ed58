package msvc

import "text/template"

// Both templates render with Unix newlines and are CRLFized by the emitter
// after rendering, since Visual Studio's own tooling writes CRLF and a
// mismatched solution file tends to make diffs noisy for anyone who opens
// one in Visual Studio afterward.

var solutionTemplate = template.Must(template.New("sln").Parse(
	`Microsoft Visual Studio Solution File, Format Version 12.00
# Visual Studio Version 17
{{- range .Projects}}
Project("{` + "{8BC9CEB8-8B4A-11D0-8D11-00A0C91BC942}" + `}") = "{{.Name}}", "{{.VcxprojRelPath}}", "{{"{"}}{{.GUID}}{{"}"}}"
EndProject
{{- end}}
Global
	GlobalSection(SolutionConfigurationPlatforms) = preSolution
{{- range $p := .ProfileNames}}
		{{$p}}|x64 = {{$p}}|x64
{{- end}}
	EndGlobalSection
	GlobalSection(ProjectConfigurationPlatforms) = postSolution
{{- range .Projects}}
{{- $guid := .GUID}}
{{- range $p := .ProfileNames}}
		{{"{"}}{{$guid}}{{"}"}}.{{$p}}|x64.ActiveCfg = {{$p}}|x64
		{{"{"}}{{$guid}}{{"}"}}.{{$p}}|x64.Build.0 = {{$p}}|x64
{{- end}}
{{- end}}
	EndGlobalSection
EndGlobal
`))

var vcxprojTemplate = template.Must(template.New("vcxproj").Parse(
	`<?xml version="1.0" encoding="utf-8"?>
<Project DefaultTargets="Build" ToolsVersion="17.0" xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <ItemGroup Label="ProjectConfigurations">
{{- range .ProfileNames}}
    <ProjectConfiguration Include="{{.}}|x64">
      <Configuration>{{.}}</Configuration>
      <Platform>x64</Platform>
    </ProjectConfiguration>
{{- end}}
  </ItemGroup>
  <PropertyGroup Label="Globals">
    <ProjectGuid>{{"{"}}{{.GUID}}{{"}"}}</ProjectGuid>
    <RootNamespace>{{.Name}}</RootNamespace>
  </PropertyGroup>
  <Import Project="$(VCTargetsPath)\Microsoft.Cpp.Default.props" />
{{- range .ProfileNames}}
  <PropertyGroup Condition="'$(Configuration)|$(Platform)'=='{{.}}|x64'" Label="Configuration">
    <ConfigurationType>{{$.ConfigurationType}}</ConfigurationType>
    <PlatformToolset>v143</PlatformToolset>
    <CharacterSet>Unicode</CharacterSet>
  </PropertyGroup>
{{- end}}
  <Import Project="$(VCTargetsPath)\Microsoft.Cpp.props" />
{{- range .ProfileNames}}
  <ItemDefinitionGroup Condition="'$(Configuration)|$(Platform)'=='{{.}}|x64'">
    <ClCompile>
      <AdditionalIncludeDirectories>{{range $.IncludeDirs}}{{.}};{{end}}%(AdditionalIncludeDirectories)</AdditionalIncludeDirectories>
      <PreprocessorDefinitions>{{range $.Defines}}{{.}};{{end}}%(PreprocessorDefinitions)</PreprocessorDefinitions>
      <AdditionalOptions>{{range $.CompileFlags}}{{.}} {{end}}%(AdditionalOptions)</AdditionalOptions>
    </ClCompile>
    <Link>
      <AdditionalDependencies>{{range $.AdditionalDependencies}}{{.}};{{end}}%(AdditionalDependencies)</AdditionalDependencies>
    </Link>
  </ItemDefinitionGroup>
{{- end}}
  <ItemGroup>
{{- range .Sources}}
    <ClCompile Include="{{.}}" />
{{- end}}
  </ItemGroup>
  <ItemGroup>
{{- range .ProjectReferences}}
    <ProjectReference Include="{{.VcxprojRelPath}}">
      <Project>{{"{"}}{{.GUID}}{{"}"}}</Project>
    </ProjectReference>
{{- end}}
  </ItemGroup>
  <Import Project="$(VCTargetsPath)\Microsoft.Cpp.targets" />
</Project>
`))
